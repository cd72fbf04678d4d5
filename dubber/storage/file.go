package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FileStore writes artifacts below Dir. Locations are file paths.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "dubber_output"
	}
	return &FileStore{Dir: dir}
}

func (fs *FileStore) Upload(_ context.Context, data []byte, name, folder string) (string, error) {
	dir := filepath.Join(fs.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	log.Infof("Saved %s in folder %s", name, folder)
	return path, nil
}

func (fs *FileStore) Download(_ context.Context, location string) ([]byte, error) {
	root, err := filepath.Abs(fs.Dir)
	if err != nil {
		return nil, err
	}
	path, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return nil, fmt.Errorf("error: location %s is outside %s", location, fs.Dir)
	}
	return os.ReadFile(path)
}
