package models

import "time"

// StudentType tags which variant of the enrollment workflow applies.
type StudentType string

const (
	StudentTypeNew        StudentType = "New Enrollee"
	StudentTypeTransferee StudentType = "Transferee"
	StudentTypeReturnee   StudentType = "Returnee"
)

// Valid reports whether the tag is one of the known applicant types.
func (t StudentType) Valid() bool {
	switch t {
	case StudentTypeNew, StudentTypeTransferee, StudentTypeReturnee:
		return true
	}
	return false
}

// Student is the applicant profile row in student_details. LRN is the
// learner reference number and doubles as the primary key; both it and the
// email carry unique constraints.
type Student struct {
	LRN              string    `db:"lrn"`
	FirstName        string    `db:"firstname"`
	LastName         string    `db:"lastname"`
	MiddleName       string    `db:"middlename"`
	Suffix           string    `db:"suffix"`
	Age              int       `db:"age"`
	Sex              string    `db:"sex"`
	CivilStatus      string    `db:"civil_status"`
	Nationality      string    `db:"nationality"`
	Birthdate        string    `db:"birthdate"`
	PlaceOfBirth     string    `db:"place_of_birth"`
	Religion         string    `db:"religion"`
	ContactNumber    string    `db:"contact_number"`
	HomeAddress      string    `db:"home_address"`
	Email            string    `db:"email"`
	YearLevel        string    `db:"year_level"`
	Strand           string    `db:"strand"`
	StudentType      string    `db:"student_type"`
	EnrollmentStatus string    `db:"enrollment_status"`
	Active           bool      `db:"is_active"`
	CreatedAt        time.Time `db:"created_at"`
}

// StudentAccount is the 1:1 credential row in student_accounts. TrackCode is
// the human-readable reference the applicant uses to follow their status.
type StudentAccount struct {
	LRN          string    `db:"lrn"`
	PasswordHash string    `db:"password_hash"`
	TrackCode    string    `db:"track_code"`
	CreatedAt    time.Time `db:"created_at"`
}

// Guardian is a parent/guardian row owned by one applicant.
type Guardian struct {
	ID           int64  `db:"id"`
	LRN          string `db:"lrn"`
	Name         string `db:"name"`
	Relationship string `db:"relationship"`
	Contact      string `db:"contact"`
	Occupation   string `db:"occupation"`
}
