package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	"github.com/noah-isme/svshs-enrollment-api/internal/repository"
	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

var pdfStub = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF")

type enrollmentTxStub struct {
	studentExists bool
	enrolled      bool
	inserted      int
}

func (s *enrollmentTxStub) StudentExists(ctx context.Context, lrn, email string) (bool, error) {
	return s.studentExists, nil
}

func (s *enrollmentTxStub) FindActiveStudent(ctx context.Context, lrn, email string) (*models.Student, error) {
	return &models.Student{LRN: lrn, YearLevel: "Grade 11", Strand: "STEM"}, nil
}

func (s *enrollmentTxStub) EnrollmentExists(ctx context.Context, lrn, schoolYear, semester string) (bool, error) {
	return s.enrolled, nil
}

func (s *enrollmentTxStub) HasApprovedEnrollment(ctx context.Context, lrn, schoolYear, semester string) (bool, error) {
	return true, nil
}

func (s *enrollmentTxStub) InsertStudent(ctx context.Context, student *models.Student) error {
	s.inserted++
	return nil
}

func (s *enrollmentTxStub) InsertDocuments(ctx context.Context, docs *models.StudentDocuments) error {
	s.inserted++
	return nil
}

func (s *enrollmentTxStub) InsertGuardian(ctx context.Context, guardian *models.Guardian) error {
	s.inserted++
	return nil
}

func (s *enrollmentTxStub) InsertAccount(ctx context.Context, account *models.StudentAccount) error {
	s.inserted++
	return nil
}

func (s *enrollmentTxStub) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	s.inserted++
	return nil
}

func (s *enrollmentTxStub) ReturnStudent(ctx context.Context, lrn, yearLevel string) error {
	return nil
}

type enrollmentStoreStub struct {
	tx *enrollmentTxStub
}

func (s *enrollmentStoreStub) WithinTx(ctx context.Context, fn func(tx repository.EnrollmentTx) error) error {
	return fn(s.tx)
}

type uploaderStub struct{}

func (uploaderStub) UploadSlots(ctx context.Context, studentType models.StudentType, lrn, lastName string, files map[string]*multipart.FileHeader) (map[string]string, error) {
	locators := make(map[string]string, len(files))
	for slot := range files {
		locators[slot] = "https://cdn.example.com/" + slot
	}
	return locators, nil
}

type notifierStub struct {
	notices []service.ConfirmationNotice
}

func (n *notifierStub) EnqueueConfirmation(notice service.ConfirmationNotice) {
	n.notices = append(n.notices, notice)
}

type settingsRepoStub struct {
	settings models.EnrollmentSettings
}

func (s *settingsRepoStub) Get(ctx context.Context) (*models.EnrollmentSettings, error) {
	snapshot := s.settings
	return &snapshot, nil
}

func (s *settingsRepoStub) SetOpen(ctx context.Context, open bool) error {
	s.settings.IsOpen = open
	return nil
}

func (s *settingsRepoStub) SetAutoWindow(ctx context.Context, start, end *time.Time) error {
	s.settings.AutoStart, s.settings.AutoEnd = start, end
	return nil
}

func enrollmentRouter(t *testing.T, open bool, tx *enrollmentTxStub) (*gin.Engine, *notifierStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	notifier := &notifierStub{}
	registrations := service.NewRegistrationService(&enrollmentStoreStub{tx: tx}, uploaderStub{}, notifier, nil, nil, "SV8BSHS", nil)
	settings := service.NewSettingsService(&settingsRepoStub{settings: models.EnrollmentSettings{IsOpen: open}}, nil, time.Minute, nil, nil)
	resp := response.NewWriter(false)

	h := NewEnrollmentHandler(registrations, settings, nil, resp)
	r := gin.New()
	r.POST("/api/enroll", h.Enroll)
	return r, notifier
}

func enrollmentForm(t *testing.T, fields map[string]string, slots []string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for _, slot := range slots {
		fw, err := w.CreateFormFile(slot, slot+".pdf")
		require.NoError(t, err)
		_, err = fw.Write(pdfStub)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func newEnrolleeFields() map[string]string {
	return map[string]string{
		"student_type":  string(models.StudentTypeNew),
		"lrn":           "136712900001",
		"email":         "juan.delacruz@example.com",
		"firstname":     "Juan",
		"lastname":      "Dela Cruz",
		"age":           "16",
		"sex":           "Male",
		"yearLevel":     "Grade 11",
		"strand":        "STEM",
		"guardian_name": "Maria Dela Cruz",
		"relationship":  "Mother",
	}
}

func requiredSlots() []string {
	return []string{models.SlotBirthCert, models.SlotForm137, models.SlotGoodMoral, models.SlotReportCard}
}

func TestEnrollmentHandlerSubmitsApplication(t *testing.T) {
	tx := &enrollmentTxStub{}
	r, notifier := enrollmentRouter(t, true, tx)

	body, contentType := enrollmentForm(t, newEnrolleeFields(), requiredSlots())
	req := httptest.NewRequest(http.MethodPost, "/api/enroll", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "SV8BSHS-136712900001", payload.Reference)
	assert.Contains(t, payload.Message, "Application submitted successfully")
	assert.Equal(t, 5, tx.inserted)
	assert.Len(t, notifier.notices, 1)
}

func TestEnrollmentHandlerRejectsWhenClosed(t *testing.T) {
	r, notifier := enrollmentRouter(t, false, &enrollmentTxStub{})

	body, contentType := enrollmentForm(t, newEnrolleeFields(), requiredSlots())
	req := httptest.NewRequest(http.MethodPost, "/api/enroll", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var payload response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.Empty(t, notifier.notices)
}

func TestEnrollmentHandlerReportsMissingFields(t *testing.T) {
	tx := &enrollmentTxStub{}
	r, _ := enrollmentRouter(t, true, tx)

	fields := newEnrolleeFields()
	delete(fields, "lastname")
	body, contentType := enrollmentForm(t, fields, []string{models.SlotBirthCert})
	req := httptest.NewRequest(http.MethodPost, "/api/enroll", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.Contains(t, payload.Message, "lastname")
	assert.Contains(t, payload.Message, models.SlotForm137)
	assert.Equal(t, 0, tx.inserted)
}

func TestEnrollmentHandlerReportsDuplicate(t *testing.T) {
	tx := &enrollmentTxStub{studentExists: true}
	r, _ := enrollmentRouter(t, true, tx)

	body, contentType := enrollmentForm(t, newEnrolleeFields(), requiredSlots())
	req := httptest.NewRequest(http.MethodPost, "/api/enroll", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "LRN or Email is already registered.", payload.Message)
	assert.Equal(t, 0, tx.inserted)
}
