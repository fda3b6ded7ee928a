package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ScratchFile is an uploaded payload materialized on local disk. The
// pipeline owns it once handed over and removes it on every exit path.
type ScratchFile struct {
	Path         string
	OriginalName string
}

// WriteScratch copies r into a new uniquely named file in dir
func WriteScratch(dir, originalName string, r io.Reader) (*ScratchFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory, %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 8 {
		ext = ""
	}

	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		removeScratch(f.Name())
		return nil, fmt.Errorf("failed to write scratch file, %w", err)
	}

	if err := f.Close(); err != nil {
		removeScratch(f.Name())
		return nil, fmt.Errorf("failed to write scratch file, %w", err)
	}

	return &ScratchFile{
		Path:         f.Name(),
		OriginalName: originalName,
	}, nil
}

// removeScratch deletes a local working file. Failures only waste disk
// space so they are logged and otherwise ignored.
func removeScratch(p string) {
	if p == "" {
		return
	}

	err := os.Remove(p)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return
	}

	zap.L().Warn("Failed to remove scratch file", zap.String("path", p), zap.Error(err))
}
