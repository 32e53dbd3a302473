package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
)

// EnrollmentTx is the write surface available inside one enrollment
// transaction. Ordering matters: the student row must exist before any of
// the child inserts run.
type EnrollmentTx interface {
	StudentExists(ctx context.Context, lrn, email string) (bool, error)
	FindActiveStudent(ctx context.Context, lrn, email string) (*models.Student, error)
	EnrollmentExists(ctx context.Context, lrn, schoolYear, semester string) (bool, error)
	HasApprovedEnrollment(ctx context.Context, lrn, schoolYear, semester string) (bool, error)
	InsertStudent(ctx context.Context, student *models.Student) error
	InsertDocuments(ctx context.Context, docs *models.StudentDocuments) error
	InsertGuardian(ctx context.Context, guardian *models.Guardian) error
	InsertAccount(ctx context.Context, account *models.StudentAccount) error
	InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	ReturnStudent(ctx context.Context, lrn, yearLevel string) error
}

// EnrollmentStore owns the enrollment write path. Every registration runs
// inside a single transaction scoped to the request.
type EnrollmentStore struct {
	db *sqlx.DB
}

// NewEnrollmentStore constructs the store.
func NewEnrollmentStore(db *sqlx.DB) *EnrollmentStore {
	return &EnrollmentStore{db: db}
}

// WithinTx opens a transaction, runs fn, and commits. Any error from fn or
// from the commit rolls the transaction back fully.
func (s *EnrollmentStore) WithinTx(ctx context.Context, fn func(tx EnrollmentTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment tx: %w", err)
	}
	if err := fn(&enrollmentTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback enrollment tx: %v (after: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment tx: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. A race between two concurrent submissions surfaces here rather
// than in the pre-checks.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type enrollmentTx struct {
	tx *sqlx.Tx
}

func (t *enrollmentTx) StudentExists(ctx context.Context, lrn, email string) (bool, error) {
	const query = `SELECT 1 FROM student_details WHERE lrn = $1 OR email = $2 LIMIT 1`
	var exists int
	if err := t.tx.GetContext(ctx, &exists, query, lrn, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student exists: %w", err)
	}
	return true, nil
}

func (t *enrollmentTx) FindActiveStudent(ctx context.Context, lrn, email string) (*models.Student, error) {
	const query = `SELECT lrn, firstname, lastname, middlename, suffix, age, sex, civil_status,
        nationality, birthdate, place_of_birth, religion, contact_number, home_address, email,
        year_level, strand, student_type, enrollment_status, is_active, created_at
        FROM student_details WHERE lrn = $1 AND email = $2 AND is_active = TRUE`
	var student models.Student
	if err := t.tx.GetContext(ctx, &student, query, lrn, email); err != nil {
		return nil, err
	}
	return &student, nil
}

func (t *enrollmentTx) EnrollmentExists(ctx context.Context, lrn, schoolYear, semester string) (bool, error) {
	const query = `SELECT 1 FROM student_enrollments WHERE lrn = $1 AND school_year = $2 AND semester = $3 LIMIT 1`
	var exists int
	if err := t.tx.GetContext(ctx, &exists, query, lrn, schoolYear, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return true, nil
}

func (t *enrollmentTx) HasApprovedEnrollment(ctx context.Context, lrn, schoolYear, semester string) (bool, error) {
	const query = `SELECT 1 FROM student_enrollments WHERE lrn = $1 AND school_year = $2 AND semester = $3 AND status = $4 LIMIT 1`
	var exists int
	if err := t.tx.GetContext(ctx, &exists, query, lrn, schoolYear, semester, models.EnrollmentStatusApproved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check approved enrollment: %w", err)
	}
	return true, nil
}

func (t *enrollmentTx) InsertStudent(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	student.Active = true
	const query = `INSERT INTO student_details
        (lrn, firstname, lastname, middlename, suffix, age, sex, civil_status, nationality,
         birthdate, place_of_birth, religion, contact_number, home_address, email, year_level,
         strand, student_type, enrollment_status, is_active, created_at)
        VALUES (:lrn, :firstname, :lastname, :middlename, :suffix, :age, :sex, :civil_status,
         :nationality, :birthdate, :place_of_birth, :religion, :contact_number, :home_address,
         :email, :year_level, :strand, :student_type, :enrollment_status, :is_active, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (t *enrollmentTx) InsertDocuments(ctx context.Context, docs *models.StudentDocuments) error {
	const query = `INSERT INTO student_documents
        (lrn, birth_cert, form137, good_moral, report_card, picture, transcript_records, honorable_dismissal)
        VALUES (:lrn, :birth_cert, :form137, :good_moral, :report_card, :picture, :transcript_records, :honorable_dismissal)`
	if _, err := t.tx.NamedExecContext(ctx, query, docs); err != nil {
		return fmt.Errorf("insert documents: %w", err)
	}
	return nil
}

func (t *enrollmentTx) InsertGuardian(ctx context.Context, guardian *models.Guardian) error {
	const query = `INSERT INTO guardians (lrn, name, relationship, contact, occupation)
        VALUES (:lrn, :name, :relationship, :contact, :occupation)`
	if _, err := t.tx.NamedExecContext(ctx, query, guardian); err != nil {
		return fmt.Errorf("insert guardian: %w", err)
	}
	return nil
}

func (t *enrollmentTx) InsertAccount(ctx context.Context, account *models.StudentAccount) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_accounts (lrn, password_hash, track_code, created_at)
        VALUES (:lrn, :password_hash, :track_code, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (t *enrollmentTx) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	const query = `INSERT INTO student_enrollments (id, lrn, school_year, semester, status, enrollment_type, grade_slip, created_at)
        VALUES (:id, :lrn, :school_year, :semester, :status, :enrollment_type, :grade_slip, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// ReturnStudent applies the returnee updates: year-level progression and a
// fresh Pending status on the profile.
func (t *enrollmentTx) ReturnStudent(ctx context.Context, lrn, yearLevel string) error {
	const query = `UPDATE student_details SET year_level = $2, enrollment_status = $3 WHERE lrn = $1`
	if _, err := t.tx.ExecContext(ctx, query, lrn, yearLevel, string(models.EnrollmentStatusPending)); err != nil {
		return fmt.Errorf("update returning student: %w", err)
	}
	return nil
}
