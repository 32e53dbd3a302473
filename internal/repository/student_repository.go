package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
)

// StudentRepository serves the read side: login, status tracking and
// registrar exports.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByLRN returns the applicant profile.
func (r *StudentRepository) FindByLRN(ctx context.Context, lrn string) (*models.Student, error) {
	const query = `SELECT lrn, firstname, lastname, middlename, suffix, age, sex, civil_status,
        nationality, birthdate, place_of_birth, religion, contact_number, home_address, email,
        year_level, strand, student_type, enrollment_status, is_active, created_at
        FROM student_details WHERE lrn = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, lrn); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindAccountByLRN returns the credential row for login.
func (r *StudentRepository) FindAccountByLRN(ctx context.Context, lrn string) (*models.StudentAccount, error) {
	const query = `SELECT lrn, password_hash, track_code, created_at FROM student_accounts WHERE lrn = $1`
	var account models.StudentAccount
	if err := r.db.GetContext(ctx, &account, query, lrn); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListEnrollmentsByLRN returns the applicant's enrollment history, newest first.
func (r *StudentRepository) ListEnrollmentsByLRN(ctx context.Context, lrn string) ([]models.Enrollment, error) {
	const query = `SELECT id, lrn, school_year, semester, status, enrollment_type, grade_slip, created_at
        FROM student_enrollments WHERE lrn = $1 ORDER BY created_at DESC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, lrn); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListEnrollmentDetails returns joined applicant/enrollment rows for exports.
func (r *StudentRepository) ListEnrollmentDetails(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	query := `SELECT e.id, e.lrn, e.school_year, e.semester, e.status, e.enrollment_type, e.grade_slip, e.created_at,
        s.firstname, s.lastname, s.email, s.year_level, s.strand
        FROM student_enrollments e
        JOIN student_details s ON s.lrn = e.lrn`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.SchoolYear != "" {
		conditions = append(conditions, fmt.Sprintf("e.school_year = $%d", len(args)+1))
		args = append(args, filter.SchoolYear)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("e.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY e.created_at DESC"

	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollment details: %w", err)
	}
	return details, nil
}
