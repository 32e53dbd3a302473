package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/pkg/config"
)

// BlobStorage persists an uploaded document and returns a stable locator
// (a public URL or a path under the configured uploads route).
type BlobStorage interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// New selects a backend from configuration.
func New(cfg config.StorageConfig, logger *zap.Logger) (BlobStorage, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalPublicURL)
	case config.StorageDriverCloudinary:
		return NewCloudinaryStorage(cfg, logger)
	case config.StorageDriverFTP:
		return NewFTPStorage(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
