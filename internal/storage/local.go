package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps objects on the local disk. Meant for development, the
// router serves the directory under /files.
type LocalStore struct {
	basePath string
	baseURL  string
}

func NewLocal(basePath, baseURL string) (*LocalStore, error) {
	if basePath == "" {
		return nil, errors.New("local storage path can't be empty")
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory, %w", err)
	}

	return &LocalStore{
		basePath: filepath.Clean(basePath),
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStore) BasePath() string {
	return s.basePath
}

func (s *LocalStore) objectPath(name string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(name))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	return filepath.Join(s.basePath, clean), nil
}

func (s *LocalStore) Upload(ctx context.Context, path, name string) (url string, err error) {
	start := time.Now()
	defer func() { observe("local", "upload", start, err) }()

	dst, err := s.objectPath(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory, %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact, %w", err)
	}
	defer src.Close()

	// Write under a temporary name so a failed copy never leaves a
	// truncated object behind
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create object file, %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write object, %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write object, %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to move object into place, %w", err)
	}

	return s.baseURL + "/" + filepath.ToSlash(strings.TrimPrefix(dst, s.basePath+string(filepath.Separator))), nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { observe("local", "delete", start, err) }()

	p, err := s.objectPath(name)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}
