package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/svshs-enrollment-api/internal/middleware"
	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

type enrollmentListerStub struct {
	filter  models.EnrollmentFilter
	details []models.EnrollmentDetail
}

func (s *enrollmentListerStub) ListEnrollmentDetails(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	s.filter = filter
	return s.details, nil
}

func exportRouter(t *testing.T, lister *enrollmentListerStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resp := response.NewWriter(false)
	h := NewExportHandler(service.NewExportService(lister, "SVSHS", nil), resp)

	r := gin.New()
	admin := r.Group("/api")
	admin.Use(middleware.AdminToken(testAdminToken, resp))
	admin.GET("/admin/enrollments/export", h.Export)
	return r
}

func TestExportHandlerStreamsCSV(t *testing.T) {
	lister := &enrollmentListerStub{details: []models.EnrollmentDetail{{
		Enrollment: models.Enrollment{LRN: "136712900001", SchoolYear: "2026-2027", Semester: "1st", Status: models.EnrollmentStatusPending, EnrollmentType: "new"},
		FirstName:  "JUAN",
		LastName:   "DELA CRUZ",
		Email:      "juan@example.com",
		YearLevel:  "Grade 11",
		Strand:     "STEM",
	}}}
	r := exportRouter(t, lister)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/enrollments/export?format=csv&school_year=2026-2027&semester=1st&status=Pending", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "enrollments_2026-2027_1st_pending.csv")
	assert.Contains(t, rec.Body.String(), "DELA CRUZ")
	assert.Equal(t, models.EnrollmentFilter{Status: models.EnrollmentStatusPending, SchoolYear: "2026-2027", Semester: "1st"}, lister.filter)
}

func TestExportHandlerStreamsPDF(t *testing.T) {
	r := exportRouter(t, &enrollmentListerStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/enrollments/export?format=pdf", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestExportHandlerRequiresAdminToken(t *testing.T) {
	r := exportRouter(t, &enrollmentListerStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/enrollments/export", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportHandlerRejectsUnknownFormat(t *testing.T) {
	r := exportRouter(t, &enrollmentListerStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/enrollments/export?format=xlsx", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
