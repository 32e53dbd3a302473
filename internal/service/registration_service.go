package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	"github.com/noah-isme/svshs-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
)

type enrollmentStore interface {
	WithinTx(ctx context.Context, fn func(tx repository.EnrollmentTx) error) error
}

type documentUploader interface {
	UploadSlots(ctx context.Context, studentType models.StudentType, lrn, lastName string, files map[string]*multipart.FileHeader) (map[string]string, error)
}

type confirmationSender interface {
	EnqueueConfirmation(notice ConfirmationNotice)
}

// RegistrationResult is returned to the client after a committed enrollment.
type RegistrationResult struct {
	Reference  string                  `json:"reference"`
	LRN        string                  `json:"lrn"`
	YearLevel  string                  `json:"yearLevel"`
	Strand     string                  `json:"strand"`
	Status     models.EnrollmentStatus `json:"status"`
	SchoolYear string                  `json:"school_year"`
	Semester   string                  `json:"semester"`
}

// RegistrationService coordinates the enrollment workflow: validation,
// duplicate checks, the ordered transactional inserts, and the post-commit
// confirmation email.
type RegistrationService struct {
	store     enrollmentStore
	documents documentUploader
	notifier  confirmationSender
	validator *validator.Validate
	logger    *zap.Logger

	referencePrefix string
	now             func() time.Time
}

// NewRegistrationService constructs the service. now may be nil and defaults
// to time.Now.
func NewRegistrationService(
	store enrollmentStore,
	documents documentUploader,
	notifier confirmationSender,
	validate *validator.Validate,
	logger *zap.Logger,
	referencePrefix string,
	now func() time.Time,
) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if referencePrefix == "" {
		referencePrefix = "SV8BSHS"
	}
	return &RegistrationService{
		store:           store,
		documents:       documents,
		notifier:        notifier,
		validator:       validate,
		logger:          logger,
		referencePrefix: referencePrefix,
		now:             now,
	}
}

// Register runs one enrollment attempt end to end. files maps document slot
// names to uploaded parts; absent optional slots are simply missing keys.
func (s *RegistrationService) Register(ctx context.Context, req RegistrationRequest, files map[string]*multipart.FileHeader) (*RegistrationResult, error) {
	studentType := models.StudentType(strings.TrimSpace(req.StudentType))
	if !studentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student type is required.")
	}
	if studentType == models.StudentTypeNew {
		// New enrollees always start in Grade 11 regardless of what the form says.
		req.YearLevel = "Grade 11"
	}

	slots := make(map[string]bool, len(files))
	for slot, header := range files {
		if header != nil {
			slots[slot] = true
		}
	}
	if err := validateRegistration(studentType, req, slots); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email address")
	}

	schoolYear := req.SchoolYear
	if schoolYear == "" {
		schoolYear = models.SchoolYearFor(s.now())
	}
	semester := req.Semester
	if semester == "" {
		if studentType == models.StudentTypeReturnee {
			semester = "2nd"
		} else {
			semester = "1st"
		}
	}

	// Uploads complete (or fail) before the transaction opens so a slow
	// blob store never holds a database transaction hostage.
	locators, err := s.documents.UploadSlots(ctx, studentType, req.LRN, req.LastName, files)
	if err != nil {
		return nil, err
	}

	reference := Reference(s.referencePrefix, req.LRN)

	var result *RegistrationResult
	switch studentType {
	case models.StudentTypeReturnee:
		result, err = s.registerReturnee(ctx, req, schoolYear, semester, reference, locators)
	default:
		result, err = s.registerNewApplicant(ctx, studentType, req, schoolYear, semester, reference, locators)
	}
	if err != nil {
		return nil, err
	}

	// Post-commit, best effort: a failed email never undoes the enrollment.
	s.notifier.EnqueueConfirmation(ConfirmationNotice{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Reference:  result.Reference,
		SchoolYear: result.SchoolYear,
		Semester:   result.Semester,
		YearLevel:  result.YearLevel,
		Strand:     result.Strand,
	})

	s.logger.Info("enrollment committed",
		zap.String("lrn", req.LRN),
		zap.String("student_type", string(studentType)),
		zap.String("reference", result.Reference),
		zap.String("school_year", result.SchoolYear),
		zap.String("semester", result.Semester),
	)
	return result, nil
}

func (s *RegistrationService) registerNewApplicant(
	ctx context.Context,
	studentType models.StudentType,
	req RegistrationRequest,
	schoolYear, semester, reference string,
	locators map[string]string,
) (*RegistrationResult, error) {
	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.EnrollmentTx) error {
		exists, err := tx.StudentExists(ctx, req.LRN, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return appErrors.ErrDuplicateApplicant
		}
		enrolled, err := tx.EnrollmentExists(ctx, req.LRN, schoolYear, semester)
		if err != nil {
			return err
		}
		if enrolled {
			return appErrors.ErrAlreadyEnrolled
		}

		student := &models.Student{
			LRN:              req.LRN,
			FirstName:        strings.ToUpper(req.FirstName),
			LastName:         strings.ToUpper(req.LastName),
			MiddleName:       strings.ToUpper(req.MiddleName),
			Suffix:           req.Suffix,
			Age:              req.Age,
			Sex:              req.Sex,
			CivilStatus:      req.Status,
			Nationality:      req.Nationality,
			Birthdate:        req.Birthdate,
			PlaceOfBirth:     req.PlaceOfBirth,
			Religion:         req.Religion,
			ContactNumber:    req.Phone,
			HomeAddress:      req.HomeAddress(),
			Email:            strings.ToLower(req.Email),
			YearLevel:        req.YearLevel,
			Strand:           req.Strand,
			StudentType:      string(studentType),
			EnrollmentStatus: string(models.EnrollmentStatusPending),
		}
		if err := tx.InsertStudent(ctx, student); err != nil {
			return err
		}

		docs := &models.StudentDocuments{LRN: req.LRN}
		for slot, locator := range locators {
			docs.Set(slot, locator)
		}
		if err := tx.InsertDocuments(ctx, docs); err != nil {
			return err
		}

		guardian := &models.Guardian{
			LRN:          req.LRN,
			Name:         strings.ToUpper(req.GuardianName),
			Relationship: req.GuardianRelation,
			Contact:      req.GuardianPhone,
			Occupation:   strings.ToUpper(req.GuardianOccupation),
		}
		if err := tx.InsertGuardian(ctx, guardian); err != nil {
			return err
		}

		account := &models.StudentAccount{
			LRN:          req.LRN,
			PasswordHash: passwordHash,
			TrackCode:    reference,
		}
		if err := tx.InsertAccount(ctx, account); err != nil {
			return err
		}

		enrollment := &models.Enrollment{
			LRN:            req.LRN,
			SchoolYear:     schoolYear,
			Semester:       semester,
			Status:         models.EnrollmentStatusPending,
			EnrollmentType: enrollmentTypeFor(studentType),
		}
		return tx.InsertEnrollment(ctx, enrollment)
	})
	if err != nil {
		return nil, s.mapTxError(err, req.LRN)
	}

	return &RegistrationResult{
		Reference:  reference,
		LRN:        req.LRN,
		YearLevel:  req.YearLevel,
		Strand:     req.Strand,
		Status:     models.EnrollmentStatusPending,
		SchoolYear: schoolYear,
		Semester:   semester,
	}, nil
}

func (s *RegistrationService) registerReturnee(
	ctx context.Context,
	req RegistrationRequest,
	schoolYear, semester, reference string,
	locators map[string]string,
) (*RegistrationResult, error) {
	var yearLevel, strand string

	err := s.store.WithinTx(ctx, func(tx repository.EnrollmentTx) error {
		student, err := tx.FindActiveStudent(ctx, req.LRN, strings.ToLower(req.Email))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrApplicantNotFound, "Student not found. Please check your information.")
			}
			return err
		}
		enrolled, err := tx.EnrollmentExists(ctx, req.LRN, schoolYear, semester)
		if err != nil {
			return err
		}
		if enrolled {
			return appErrors.Clone(appErrors.ErrAlreadyEnrolled, fmt.Sprintf("You are already enrolled for the %s semester.", semester))
		}

		// Second-semester enrollment requires an approved first-semester
		// record within the same school year.
		if semester == "2nd" {
			completed, err := tx.HasApprovedEnrollment(ctx, req.LRN, schoolYear, "1st")
			if err != nil {
				return err
			}
			if !completed {
				return appErrors.Clone(appErrors.ErrValidation, "You must complete 1st semester before enrolling for 2nd semester.")
			}
		}

		// Grade 11 completers move up; Grade 12 returnees stay put.
		yearLevel = student.YearLevel
		if yearLevel == "Grade 11" {
			yearLevel = "Grade 12"
		}
		strand = student.Strand
		if err := tx.ReturnStudent(ctx, req.LRN, yearLevel); err != nil {
			return err
		}

		enrollment := &models.Enrollment{
			LRN:            req.LRN,
			SchoolYear:     schoolYear,
			Semester:       semester,
			Status:         models.EnrollmentStatusPending,
			EnrollmentType: "continuing",
		}
		if locator, ok := locators[models.SlotGradeSlip]; ok {
			enrollment.GradeSlip = &locator
		}
		return tx.InsertEnrollment(ctx, enrollment)
	})
	if err != nil {
		return nil, s.mapTxError(err, req.LRN)
	}

	return &RegistrationResult{
		Reference:  reference,
		LRN:        req.LRN,
		YearLevel:  yearLevel,
		Strand:     strand,
		Status:     models.EnrollmentStatusPending,
		SchoolYear: schoolYear,
		Semester:   semester,
	}, nil
}

// mapTxError funnels transaction failures into the public taxonomy. Unique
// violations are treated exactly like the pre-check failures because a
// concurrent submission can slip past the checks.
func (s *RegistrationService) mapTxError(err error, lrn string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if repository.IsUniqueViolation(err) {
		s.logger.Warn("unique constraint hit during enrollment", zap.String("lrn", lrn), zap.Error(err))
		return appErrors.ErrDuplicateApplicant
	}
	s.logger.Error("enrollment transaction failed", zap.String("lrn", lrn), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
}

// hashPassword hashes the applicant-chosen password; when none is supplied a
// random initial credential is generated so plaintext is never derived from
// public data.
func (s *RegistrationService) hashPassword(password string) (string, error) {
	if password == "" {
		password = uuid.NewString()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(hash), nil
}

func enrollmentTypeFor(t models.StudentType) string {
	switch t {
	case models.StudentTypeTransferee:
		return "transferee"
	case models.StudentTypeReturnee:
		return "continuing"
	default:
		return "new"
	}
}
