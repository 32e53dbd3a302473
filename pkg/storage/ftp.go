package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/pkg/config"
)

// FTPStorage pushes documents to a remote web host over FTP. The files become
// reachable under the host's public URL, which is what gets persisted.
type FTPStorage struct {
	host      string
	user      string
	password  string
	remoteDir string
	publicURL string
	logger    *zap.Logger
}

// NewFTPStorage builds the storage handle. The connection is dialed per
// upload; enrollment volume does not justify a pooled control channel.
func NewFTPStorage(cfg config.StorageConfig, logger *zap.Logger) *FTPStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FTPStorage{
		host:      cfg.FTPHost,
		user:      cfg.FTPUser,
		password:  cfg.FTPPassword,
		remoteDir: strings.TrimRight(cfg.FTPRemoteDir, "/"),
		publicURL: strings.TrimRight(cfg.FTPPublicURL, "/"),
		logger:    logger,
	}
}

// Upload stores the file on the remote host and returns its public URL.
func (s *FTPStorage) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	conn, err := ftp.Dial(s.host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(10*time.Second))
	if err != nil {
		return "", fmt.Errorf("ftp dial: %w", err)
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			s.logger.Warn("ftp quit failed", zap.Error(err))
		}
	}()

	if err := conn.Login(s.user, s.password); err != nil {
		return "", fmt.Errorf("ftp login: %w", err)
	}

	remotePath := s.remoteDir + path.Join("/", name)
	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		// Best effort; Stor reports the real failure when the dir is missing.
		_ = conn.MakeDir(dir)
	}
	if err := conn.Stor(remotePath, r); err != nil {
		return "", fmt.Errorf("ftp store %s: %w", remotePath, err)
	}

	locator := s.publicURL + path.Join("/", name)
	s.logger.Info("document uploaded over ftp", zap.String("remote_path", remotePath))
	return locator, nil
}
