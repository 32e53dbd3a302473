package models

import (
	"fmt"
	"time"
)

// EnrollmentStatus tracks an application through review.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "Pending"
	EnrollmentStatusApproved EnrollmentStatus = "Approved"
	EnrollmentStatusRejected EnrollmentStatus = "Rejected"
)

// Enrollment ties an applicant to a (school_year, semester) period. The
// composite (lrn, school_year, semester) carries a unique constraint.
type Enrollment struct {
	ID             string           `db:"id"`
	LRN            string           `db:"lrn"`
	SchoolYear     string           `db:"school_year"`
	Semester       string           `db:"semester"`
	Status         EnrollmentStatus `db:"status"`
	EnrollmentType string           `db:"enrollment_type"`
	GradeSlip      *string          `db:"grade_slip"`
	CreatedAt      time.Time        `db:"created_at"`
}

// EnrollmentDetail joins an enrollment with the applicant profile for the
// status endpoint and registrar exports.
type EnrollmentDetail struct {
	Enrollment
	FirstName string `db:"firstname"`
	LastName  string `db:"lastname"`
	Email     string `db:"email"`
	YearLevel string `db:"year_level"`
	Strand    string `db:"strand"`
}

// EnrollmentFilter narrows registrar exports and listings.
type EnrollmentFilter struct {
	Status     EnrollmentStatus
	SchoolYear string
	Semester   string
}

// SchoolYearFor derives the "YYYY-YYYY+1" school year containing the given
// time, rolling over every April.
func SchoolYearFor(now time.Time) string {
	year := now.Year()
	if now.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}
