package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
)

type studentReaderStub struct {
	student     *models.Student
	account     *models.StudentAccount
	enrollments []models.Enrollment
}

func (s *studentReaderStub) FindByLRN(ctx context.Context, lrn string) (*models.Student, error) {
	if s.student == nil || s.student.LRN != lrn {
		return nil, sql.ErrNoRows
	}
	return s.student, nil
}

func (s *studentReaderStub) FindAccountByLRN(ctx context.Context, lrn string) (*models.StudentAccount, error) {
	if s.account == nil || s.account.LRN != lrn {
		return nil, sql.ErrNoRows
	}
	return s.account, nil
}

func (s *studentReaderStub) ListEnrollmentsByLRN(ctx context.Context, lrn string) ([]models.Enrollment, error) {
	return s.enrollments, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *studentReaderStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	reader := &studentReaderStub{
		student: &models.Student{
			LRN:       "136712900001",
			FirstName: "JUAN",
			LastName:  "DELA CRUZ",
			YearLevel: "Grade 11",
			Strand:    "STEM",
		},
		account: &models.StudentAccount{
			LRN:          "136712900001",
			PasswordHash: string(hash),
			TrackCode:    "SV8BSHS-136712900001",
		},
	}
	return NewAuthService(reader, "test_secret", time.Hour, nil, nil), reader
}

func TestAuthServiceLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	result, err := svc.Login(context.Background(), LoginRequest{LRN: "136712900001", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "JUAN", result.FirstName)
	assert.Equal(t, "SV8BSHS-136712900001", result.TrackCode)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "136712900001", claims.LRN)
	assert.Equal(t, "SV8BSHS-136712900001", claims.TrackCode)
}

func TestAuthServiceLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{LRN: "136712900001", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceLoginRejectsUnknownLRN(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{LRN: "000000000000", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRequiresCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer, _ := newAuthFixture(t)
	result, err := issuer.Login(context.Background(), LoginRequest{LRN: "136712900001", Password: "secret123"})
	require.NoError(t, err)

	verifier := NewAuthService(&studentReaderStub{}, "different_secret", time.Hour, nil, nil)
	_, err = verifier.ValidateToken(result.Token)
	require.Error(t, err)
}

func TestAuthServiceMyEnrollments(t *testing.T) {
	svc, reader := newAuthFixture(t)
	reader.enrollments = []models.Enrollment{
		{LRN: "136712900001", SchoolYear: "2026-2027", Semester: "2nd", Status: models.EnrollmentStatusPending, EnrollmentType: "continuing"},
		{LRN: "136712900001", SchoolYear: "2026-2027", Semester: "1st", Status: models.EnrollmentStatusApproved, EnrollmentType: "new"},
	}

	views, err := svc.MyEnrollments(context.Background(), "136712900001")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "2nd", views[0].Semester)
	assert.Equal(t, models.EnrollmentStatusApproved, views[1].Status)
}
