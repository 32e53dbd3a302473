package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes documents on disk under a base directory. Files are
// served statically under the configured public URL prefix.
type LocalStorage struct {
	baseDir   string
	publicURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicURL == "" {
		publicURL = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Upload copies the reader into the target file and returns its public locator.
func (s *LocalStorage) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(s.baseDir, filepath.Clean("/"+name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare uploads directory: %w", err)
	}
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.publicURL + path.Join("/", name), nil
}

// Path exposes the on-disk location for a stored name.
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.baseDir, filepath.Clean("/"+name))
}

// Dir returns the base directory so the HTTP layer can serve it statically.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}
