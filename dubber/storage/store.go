package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store persists request artifacts and returns a location string that
// Download accepts.
type Store interface {
	Upload(ctx context.Context, data []byte, name, folder string) (string, error)
	Download(ctx context.Context, location string) ([]byte, error)
}

// RandomName returns a fresh object name with the given extension, e.g. ".wav".
func RandomName(ext string) string {
	return fmt.Sprintf("%s%s", uuid.New().String(), ext)
}
