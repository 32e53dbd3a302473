package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
	"github.com/noah-isme/svshs-enrollment-api/pkg/storage"
)

// DocumentService pushes uploaded form parts to the configured blob storage
// and hands back slot -> locator mappings for the coordinator.
type DocumentService struct {
	storage storage.BlobStorage
	logger  *zap.Logger
	maxSize int64
	timeout time.Duration
}

// NewDocumentService constructs the service.
func NewDocumentService(store storage.BlobStorage, maxSize int64, timeout time.Duration, logger *zap.Logger) *DocumentService {
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{storage: store, logger: logger, maxSize: maxSize, timeout: timeout}
}

// UploadSlots uploads every present slot for the applicant type. A failure
// on a required slot aborts; a failure on an optional slot is logged and the
// slot left out of the result.
func (s *DocumentService) UploadSlots(ctx context.Context, studentType models.StudentType, lrn, lastName string, files map[string]*multipart.FileHeader) (map[string]string, error) {
	locators := make(map[string]string)

	for _, slot := range models.RequiredSlots(studentType) {
		header := files[slot]
		if header == nil {
			// The validator rejects these earlier; guard anyway.
			return nil, appErrors.Clone(appErrors.ErrValidation, "Missing required document: "+slot)
		}
		locator, err := s.uploadOne(ctx, lrn, lastName, slot, header)
		if err != nil {
			s.logger.Error("required document upload failed",
				zap.String("lrn", lrn), zap.String("slot", slot), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrUpload.Code, appErrors.ErrUpload.Status,
				fmt.Sprintf("Failed to upload %s. Please try again.", slot))
		}
		locators[slot] = locator
	}

	for _, slot := range models.OptionalSlots(studentType) {
		header := files[slot]
		if header == nil {
			continue
		}
		locator, err := s.uploadOne(ctx, lrn, lastName, slot, header)
		if err != nil {
			// Optional slots stay null; the applicant can resubmit later.
			s.logger.Warn("optional document upload failed",
				zap.String("lrn", lrn), zap.String("slot", slot), zap.Error(err))
			continue
		}
		locators[slot] = locator
	}

	return locators, nil
}

func (s *DocumentService) uploadOne(ctx context.Context, lrn, lastName, slot string, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxSize {
		return "", fmt.Errorf("file %s exceeds %d bytes", header.Filename, s.maxSize)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer file.Close() //nolint:errcheck

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect mime type: %w", err)
	}
	if !allowedDocumentType(mtype.String()) {
		return "", fmt.Errorf("file type %s not allowed for %s", mtype.String(), slot)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := objectName(lrn, lastName, slot, header.Filename)

	uploadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	locator, err := s.storage.Upload(uploadCtx, name, file)
	if err != nil {
		return "", err
	}
	return locator, nil
}

// allowedDocumentType admits scans and photos only: images and PDFs.
func allowedDocumentType(mime string) bool {
	return strings.HasPrefix(mime, "image/") || mime == "application/pdf"
}

// objectName builds the stored path: one folder per applicant, a random
// suffix so re-uploads never clobber each other.
func objectName(lrn, lastName, slot, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	folder := lrn
	if lastName != "" {
		folder = fmt.Sprintf("%s_%s", lrn, strings.ToUpper(lastName))
	}
	return fmt.Sprintf("%s/%s_%s%s", folder, slot, uuid.NewString()[:8], ext)
}
