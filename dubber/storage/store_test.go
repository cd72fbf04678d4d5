package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestRandomName(t *testing.T) {
	a, b := RandomName(".ssml"), RandomName(".ssml")
	if a == b {
		t.Fatalf("names should differ")
	}
	if !strings.HasSuffix(a, ".ssml") || len(a) != 36+5 {
		t.Fatalf("unexpected name %s", a)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	ctx := context.Background()

	loc, err := fs.Upload(ctx, []byte("<speak/>"), "a.ssml", "ssml/")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if loc != filepath.Join(dir, "ssml", "a.ssml") {
		t.Fatalf("unexpected location %s", loc)
	}
	data, err := fs.Download(ctx, loc)
	if err != nil || string(data) != "<speak/>" {
		t.Fatalf("unexpected %q %v", data, err)
	}

	if _, err := fs.Download(ctx, filepath.Join(dir, "..", "etc", "passwd")); err == nil {
		t.Fatalf("expected error outside store dir")
	}
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := &S3Store{client: fake, bucket: "media"}
	ctx := context.Background()

	loc, err := s.Upload(ctx, []byte("wav"), "x.wav", "audio/")
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if loc != "s3://media/audio/x.wav" {
		t.Fatalf("unexpected location %s", loc)
	}
	if string(fake.objects["media/audio/x.wav"]) != "wav" {
		t.Fatalf("object not stored")
	}

	data, err := s.Download(ctx, loc)
	if err != nil || string(data) != "wav" {
		t.Fatalf("unexpected %q %v", data, err)
	}

	if _, err := s.Download(ctx, "s3://other/audio/x.wav"); err == nil {
		t.Fatalf("expected error for foreign bucket")
	}

	fake.putErr = errors.New("boom")
	if _, err := s.Upload(ctx, nil, "y", "input/"); err == nil {
		t.Fatalf("expected upload error")
	}
}
