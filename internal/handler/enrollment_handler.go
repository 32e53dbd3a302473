package handler

import (
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

// documentParts are the multipart file field names the form may send.
var documentParts = []string{
	models.SlotBirthCert,
	models.SlotForm137,
	models.SlotGoodMoral,
	models.SlotReportCard,
	models.SlotPicture,
	models.SlotTranscriptRecords,
	models.SlotHonorableDismissal,
	models.SlotGradeSlip,
}

// EnrollmentHandler exposes the enrollment submission endpoint.
type EnrollmentHandler struct {
	registrations *service.RegistrationService
	settings      *service.SettingsService
	metrics       *service.MetricsService
	resp          *response.Writer
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(registrations *service.RegistrationService, settings *service.SettingsService, metrics *service.MetricsService, resp *response.Writer) *EnrollmentHandler {
	return &EnrollmentHandler{registrations: registrations, settings: settings, metrics: metrics, resp: resp}
}

// Enroll accepts the multipart enrollment form for all applicant types.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	open, err := h.settings.IsOpen(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	if !open {
		h.resp.Error(c, appErrors.ErrEnrollmentClosed)
		return
	}

	var req service.RegistrationRequest
	if err := c.ShouldBind(&req); err != nil {
		h.resp.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload"))
		return
	}

	result, err := h.registrations.Register(c.Request.Context(), req, formFiles(c))
	if err != nil {
		h.observe(req.StudentType, err)
		h.resp.Error(c, err)
		return
	}

	h.observe(req.StudentType, nil)
	h.resp.Submitted(c, result.Reference,
		fmt.Sprintf("Application submitted successfully. Reference: %s", result.Reference))
}

// formFiles collects the first file uploaded per known document slot.
func formFiles(c *gin.Context) map[string]*multipart.FileHeader {
	files := make(map[string]*multipart.FileHeader)
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return files
	}
	for _, slot := range documentParts {
		if headers := form.File[slot]; len(headers) > 0 {
			files[slot] = headers[0]
		}
	}
	return files
}

func (h *EnrollmentHandler) observe(studentType string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	h.metrics.IncSubmission(studentType, outcome)
}
