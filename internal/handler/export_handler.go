package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

// ExportHandler serves registrar exports of the enrollment list.
type ExportHandler struct {
	exports *service.ExportService
	resp    *response.Writer
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, resp *response.Writer) *ExportHandler {
	return &ExportHandler{exports: exports, resp: resp}
}

// Export streams the filtered enrollment list as CSV or PDF.
func (h *ExportHandler) Export(c *gin.Context) {
	filter := models.EnrollmentFilter{
		Status:     models.EnrollmentStatus(c.Query("status")),
		SchoolYear: c.Query("school_year"),
		Semester:   c.Query("semester"),
	}
	result, err := h.exports.Export(c.Request.Context(), filter, c.DefaultQuery("format", "csv"))
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
