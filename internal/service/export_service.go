package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
	"github.com/noah-isme/svshs-enrollment-api/pkg/export"
)

type enrollmentLister interface {
	ListEnrollmentDetails(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

// ExportResult is a rendered registrar export.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders applicant lists for the registrar.
type ExportService struct {
	repo   enrollmentLister
	logger *zap.Logger
	school string
}

// NewExportService constructs the service.
func NewExportService(repo enrollmentLister, schoolName string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, logger: logger, school: schoolName}
}

var exportHeaders = []string{"LRN", "Last Name", "First Name", "Email", "Year Level", "Strand", "School Year", "Semester", "Type", "Status"}

// Export renders the filtered enrollment list as CSV or PDF.
func (s *ExportService) Export(ctx context.Context, filter models.EnrollmentFilter, format string) (*ExportResult, error) {
	details, err := s.repo.ListEnrollmentDetails(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(details))}
	for _, d := range details {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"LRN":         d.LRN,
			"Last Name":   d.LastName,
			"First Name":  d.FirstName,
			"Email":       d.Email,
			"Year Level":  d.YearLevel,
			"Strand":      d.Strand,
			"School Year": d.SchoolYear,
			"Semester":    d.Semester,
			"Type":        d.EnrollmentType,
			"Status":      string(d.Status),
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		content, err := export.CSV(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: exportFilename(filter, "csv")}, nil
	case "pdf":
		title := fmt.Sprintf("%s Enrollments", s.school)
		content, err := export.PDF(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: exportFilename(filter, "pdf")}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func exportFilename(filter models.EnrollmentFilter, ext string) string {
	parts := []string{"enrollments"}
	if filter.SchoolYear != "" {
		parts = append(parts, filter.SchoolYear)
	}
	if filter.Semester != "" {
		parts = append(parts, filter.Semester)
	}
	if filter.Status != "" {
		parts = append(parts, strings.ToLower(string(filter.Status)))
	}
	return strings.Join(parts, "_") + "." + ext
}
