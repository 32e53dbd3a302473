package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/pkg/config"
)

// CloudinaryStorage uploads documents to Cloudinary and returns the secure URL.
type CloudinaryStorage struct {
	client *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

// NewCloudinaryStorage validates credentials and builds the client.
func NewCloudinaryStorage(cfg config.StorageConfig, logger *zap.Logger) (*CloudinaryStorage, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryStorage{client: cld, folder: strings.Trim(cfg.CloudinaryFolder, "/"), logger: logger}, nil
}

// Upload sends the file to Cloudinary under the configured folder.
func (s *CloudinaryStorage) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	result, err := s.client.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID(name),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	s.logger.Info("document uploaded to cloudinary", zap.String("public_id", result.PublicID))
	return result.SecureURL, nil
}

func publicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '/' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	return base
}
