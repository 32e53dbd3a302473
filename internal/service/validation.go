package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
)

// RegistrationRequest is the flat field set bound from the multipart
// enrollment form. Address parts are combined into one home address line
// before persistence, matching how the registrar reads them.
type RegistrationRequest struct {
	StudentType string `form:"student_type"`

	LRN          string `form:"lrn"`
	Email        string `form:"email" validate:"omitempty,email"`
	FirstName    string `form:"firstname"`
	LastName     string `form:"lastname"`
	MiddleName   string `form:"middlename"`
	Suffix       string `form:"suffix"`
	Age          int    `form:"age"`
	Sex          string `form:"sex"`
	Status       string `form:"status"`
	Nationality  string `form:"nationality"`
	Birthdate    string `form:"birthdate"`
	PlaceOfBirth string `form:"place_of_birth"`
	Religion     string `form:"religion"`
	Phone        string `form:"phone"`

	LotBlk       string `form:"lot_blk"`
	Street       string `form:"street"`
	Barangay     string `form:"barangay"`
	Municipality string `form:"municipality"`
	Province     string `form:"province"`
	Zipcode      string `form:"zipcode"`

	YearLevel string `form:"yearLevel"`
	Strand    string `form:"strand"`
	Password  string `form:"password"`

	GuardianName       string `form:"guardian_name"`
	GuardianRelation   string `form:"relationship"`
	GuardianPhone      string `form:"guardian_phone"`
	GuardianOccupation string `form:"occupation"`

	SchoolYear string `form:"school_year"`
	Semester   string `form:"semester"`
}

// HomeAddress joins the address parts the way the paper form prints them.
func (r RegistrationRequest) HomeAddress() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s %s",
		r.LotBlk, r.Street, r.Barangay, r.Municipality, r.Province, r.Zipcode)
}

// requiredFields lists the form fields each applicant type must supply.
// Returnees only re-identify themselves; their profile already exists.
func requiredFields(t models.StudentType, req RegistrationRequest) map[string]string {
	common := map[string]string{
		"lrn":   req.LRN,
		"email": req.Email,
	}
	if t == models.StudentTypeReturnee {
		return common
	}
	common["firstname"] = req.FirstName
	common["lastname"] = req.LastName
	common["yearLevel"] = req.YearLevel
	common["strand"] = req.Strand
	return common
}

// validateRegistration checks required fields and required document slots.
// Pure: no I/O, no side effects.
func validateRegistration(t models.StudentType, req RegistrationRequest, slots map[string]bool) error {
	var missing []string
	fields := requiredFields(t, req)
	for _, name := range []string{"lrn", "email", "firstname", "lastname", "yearLevel", "strand"} {
		value, required := fields[name]
		if required && strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	for _, slot := range models.RequiredSlots(t) {
		if !slots[slot] {
			missing = append(missing, slot)
		}
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation,
			"Missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}
