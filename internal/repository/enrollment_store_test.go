package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
)

func newStoreMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentFixture() *models.Student {
	return &models.Student{
		LRN:              "136712900001",
		FirstName:        "JUAN",
		LastName:         "DELA CRUZ",
		MiddleName:       "SANTOS",
		Age:              16,
		Sex:              "Male",
		CivilStatus:      "Single",
		Nationality:      "Filipino",
		Birthdate:        "2009-05-14",
		PlaceOfBirth:     "San Vicente",
		Religion:         "Catholic",
		ContactNumber:    "09171234567",
		HomeAddress:      "Lot 4 Blk 2, Mabini St, Poblacion, San Vicente, Camarines Norte 4609",
		Email:            "juan.delacruz@example.com",
		YearLevel:        "Grade 11",
		Strand:           "STEM",
		StudentType:      string(models.StudentTypeNew),
		EnrollmentStatus: string(models.EnrollmentStatusPending),
	}
}

func TestEnrollmentStoreCommitsFullRegistration(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewEnrollmentStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM student_details").
		WithArgs("136712900001", "juan.delacruz@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT 1 FROM student_enrollments").
		WithArgs("136712900001", "2026-2027", "1st").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO student_details").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_documents").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO guardians").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_accounts").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_enrollments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx EnrollmentTx) error {
		exists, err := tx.StudentExists(context.Background(), "136712900001", "juan.delacruz@example.com")
		require.NoError(t, err)
		require.False(t, exists)

		enrolled, err := tx.EnrollmentExists(context.Background(), "136712900001", "2026-2027", "1st")
		require.NoError(t, err)
		require.False(t, enrolled)

		if err := tx.InsertStudent(context.Background(), studentFixture()); err != nil {
			return err
		}
		if err := tx.InsertDocuments(context.Background(), &models.StudentDocuments{LRN: "136712900001"}); err != nil {
			return err
		}
		if err := tx.InsertGuardian(context.Background(), &models.Guardian{LRN: "136712900001", Name: "MARIA DELA CRUZ"}); err != nil {
			return err
		}
		if err := tx.InsertAccount(context.Background(), &models.StudentAccount{LRN: "136712900001", PasswordHash: "hash", TrackCode: "SV8BSHS-136712900001"}); err != nil {
			return err
		}
		return tx.InsertEnrollment(context.Background(), &models.Enrollment{
			LRN:            "136712900001",
			SchoolYear:     "2026-2027",
			Semester:       "1st",
			EnrollmentType: "new",
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentStoreRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewEnrollmentStore(db)

	insertErr := errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_details").
		WillReturnError(insertErr)
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx EnrollmentTx) error {
		return tx.InsertStudent(context.Background(), studentFixture())
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, insertErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentStoreStudentExistsFindsRow(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewEnrollmentStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM student_details").
		WithArgs("136712900001", "juan.delacruz@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx EnrollmentTx) error {
		exists, err := tx.StudentExists(context.Background(), "136712900001", "juan.delacruz@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentStoreHasApprovedEnrollment(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewEnrollmentStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM student_enrollments").
		WithArgs("136712900001", "2026-2027", "1st", models.EnrollmentStatusApproved).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx EnrollmentTx) error {
		approved, err := tx.HasApprovedEnrollment(context.Background(), "136712900001", "2026-2027", "1st")
		require.NoError(t, err)
		assert.False(t, approved)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentStoreFindActiveStudent(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewEnrollmentStore(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"lrn", "firstname", "lastname", "middlename", "suffix", "age", "sex", "civil_status",
		"nationality", "birthdate", "place_of_birth", "religion", "contact_number", "home_address",
		"email", "year_level", "strand", "student_type", "enrollment_status", "is_active", "created_at",
	}).AddRow(
		"136712900001", "JUAN", "DELA CRUZ", "SANTOS", "", 16, "Male", "Single",
		"Filipino", "2009-05-14", "San Vicente", "Catholic", "09171234567", "addr",
		"juan.delacruz@example.com", "Grade 11", "STEM", "New Enrollee", "Pending", true, now,
	)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_details WHERE lrn = $1 AND email = $2 AND is_active = TRUE")).
		WithArgs("136712900001", "juan.delacruz@example.com").
		WillReturnRows(rows)
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx EnrollmentTx) error {
		student, err := tx.FindActiveStudent(context.Background(), "136712900001", "juan.delacruz@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Grade 11", student.YearLevel)
		assert.Equal(t, "STEM", student.Strand)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentStoreReturnStudentUpdatesProfile(t *testing.T) {
	db, mock, cleanup := newStoreMock(t)
	defer cleanup()
	store := NewEnrollmentStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_details SET year_level = $2, enrollment_status = $3 WHERE lrn = $1")).
		WithArgs("136712900001", "Grade 12", "Pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO student_enrollments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx EnrollmentTx) error {
		if err := tx.ReturnStudent(context.Background(), "136712900001", "Grade 12"); err != nil {
			return err
		}
		return tx.InsertEnrollment(context.Background(), &models.Enrollment{
			LRN:            "136712900001",
			SchoolYear:     "2026-2027",
			Semester:       "2nd",
			EnrollmentType: "continuing",
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain error")))
	assert.False(t, IsUniqueViolation(nil))
}
