// Package storage uploads finished artifacts to durable object storage
package storage

import (
	"context"
	"fmt"
	"time"

	"videoshare/video-api/pkg/metrics"

	"github.com/spf13/viper"
)

// Store is the object store client
type Store interface {
	// Upload copies the local file at path to the object called name and
	// returns the URL it can be reached at
	Upload(ctx context.Context, path, name string) (string, error)
	Delete(ctx context.Context, name string) error
}

// New builds the object store selected by storage.type
func New(ctx context.Context) (Store, error) {
	container := viper.GetString("storage.container")

	switch viper.GetString("storage.type") {
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:          container,
			Region:          viper.GetString("storage.s3.region"),
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			AccessKeyID:     viper.GetString("storage.s3.access_key_id"),
			SecretAccessKey: viper.GetString("storage.s3.secret_access_key"),
			PublicURL:       viper.GetString("storage.s3.public_url"),
		})
	case "gcs":
		return NewGCS(ctx, container, viper.GetString("storage.gcs.credentials_file"))
	case "azure":
		return NewAzure(viper.GetString("storage.azure.connection_string"), container)
	case "local":
		return NewLocal(viper.GetString("storage.local.path"), viper.GetString("storage.local.base_url"))
	default:
		return nil, fmt.Errorf("unsupported storage type %q", viper.GetString("storage.type"))
	}
}

func observe(backend, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	metrics.RecordStoreOperation(backend, op, status, time.Since(start).Seconds())
}
