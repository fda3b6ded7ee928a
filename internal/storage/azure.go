package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

type AzureStore struct {
	client    *azblob.Client
	container string
}

func NewAzure(connectionString, container string) (*AzureStore, error) {
	if connectionString == "" {
		return nil, errors.New("azure connection string can't be empty")
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client, %w", err)
	}

	return &AzureStore{
		client:    client,
		container: container,
	}, nil
}

func (s *AzureStore) Upload(ctx context.Context, path, name string) (url string, err error) {
	start := time.Now()
	defer func() { observe("azure", "upload", start, err) }()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact, %w", err)
	}
	defer f.Close()

	_, err = s.client.UploadFile(ctx, s.container, name, f, nil)
	if err != nil {
		return "", fmt.Errorf("failed to upload video to azure, %w", err)
	}

	return strings.TrimSuffix(s.client.URL(), "/") + "/" + s.container + "/" + name, nil
}

func (s *AzureStore) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { observe("azure", "delete", start, err) }()

	_, err = s.client.DeleteBlob(ctx, s.container, name, nil)
	return err
}
