package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client *gcs.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client, %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, path, name string) (url string, err error) {
	start := time.Now()
	defer func() { observe("gcs", "upload", start, err) }()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact, %w", err)
	}
	defer f.Close()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "video/mp4"
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload video to gcs, %w", err)
	}

	// The object only exists once the writer is closed without error
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gcs upload, %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { observe("gcs", "delete", start, err) }()

	return s.client.Bucket(s.bucket).Object(name).Delete(ctx)
}
