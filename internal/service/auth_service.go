package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
)

type studentReader interface {
	FindByLRN(ctx context.Context, lrn string) (*models.Student, error)
	FindAccountByLRN(ctx context.Context, lrn string) (*models.StudentAccount, error)
	ListEnrollmentsByLRN(ctx context.Context, lrn string) ([]models.Enrollment, error)
}

// LoginRequest is the applicant login payload for the status-tracking app.
type LoginRequest struct {
	LRN      string `json:"lrn" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and a profile summary.
type LoginResponse struct {
	Token     string `json:"token"`
	LRN       string `json:"lrn"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	YearLevel string `json:"yearLevel"`
	Strand    string `json:"strand"`
	TrackCode string `json:"track_code"`
}

// EnrollmentStatusView is what the status endpoint returns per record.
type EnrollmentStatusView struct {
	SchoolYear string                  `json:"school_year"`
	Semester   string                  `json:"semester"`
	Status     models.EnrollmentStatus `json:"status"`
	Type       string                  `json:"enrollment_type"`
	CreatedAt  time.Time               `json:"created_at"`
}

// AuthService issues and validates applicant tokens.
type AuthService struct {
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger

	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewAuthService constructs the service.
func NewAuthService(students studentReader, secret string, expiration time.Duration, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &AuthService{
		students:   students,
		validator:  validate,
		logger:     logger,
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "LRN and password are required")
	}

	account, err := s.students.FindAccountByLRN(ctx, req.LRN)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	student, err := s.students.FindByLRN(ctx, req.LRN)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	now := s.now()
	claims := models.StudentClaims{
		LRN:       account.LRN,
		TrackCode: account.TrackCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.LRN,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &LoginResponse{
		Token:     token,
		LRN:       student.LRN,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		YearLevel: student.YearLevel,
		Strand:    student.Strand,
		TrackCode: account.TrackCode,
	}, nil
}

// ValidateToken parses and verifies an applicant token.
func (s *AuthService) ValidateToken(raw string) (*models.StudentClaims, error) {
	claims := &models.StudentClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// MyEnrollments returns the caller's enrollment history.
func (s *AuthService) MyEnrollments(ctx context.Context, lrn string) ([]EnrollmentStatusView, error) {
	enrollments, err := s.students.ListEnrollmentsByLRN(ctx, lrn)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	views := make([]EnrollmentStatusView, 0, len(enrollments))
	for _, e := range enrollments {
		views = append(views, EnrollmentStatusView{
			SchoolYear: e.SchoolYear,
			Semester:   e.Semester,
			Status:     e.Status,
			Type:       e.EnrollmentType,
			CreatedAt:  e.CreatedAt,
		})
	}
	return views, nil
}
