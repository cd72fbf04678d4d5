package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps objects in one bucket. Locations have the form s3://bucket/key.
type S3Store struct {
	client s3API
	bucket string
}

func NewS3Store(ctx context.Context, bucket string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("error: S3 bucket name is not set")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (s *S3Store) prefix() string {
	return "s3://" + s.bucket + "/"
}

func (s *S3Store) Upload(ctx context.Context, data []byte, name, folder string) (string, error) {
	key := folder + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		log.Errorf("Error uploading %s to S3: %v", key, err)
		return "", fmt.Errorf("error uploading %s: %w", key, err)
	}
	log.Infof("Uploaded %s to S3 in folder %s", name, folder)
	return s.prefix() + key, nil
}

func (s *S3Store) Download(ctx context.Context, location string) ([]byte, error) {
	key, ok := strings.CutPrefix(location, s.prefix())
	if !ok || key == "" {
		return nil, fmt.Errorf("error: location %s is not in bucket %s", location, s.bucket)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error downloading %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", key, err)
	}
	return data, nil
}
