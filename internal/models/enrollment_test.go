package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchoolYearForRollsOverInApril(t *testing.T) {
	assert.Equal(t, "2025-2026", SchoolYearFor(time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-2027", SchoolYearFor(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-2027", SchoolYearFor(time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC)))
}

func TestStudentTypeValid(t *testing.T) {
	assert.True(t, StudentTypeNew.Valid())
	assert.True(t, StudentTypeTransferee.Valid())
	assert.True(t, StudentTypeReturnee.Valid())
	assert.False(t, StudentType("Alumni").Valid())
	assert.False(t, StudentType("").Valid())
}
