package models

// Document slot names. These match the multipart part names on the public
// enrollment form.
const (
	SlotBirthCert          = "birth_cert"
	SlotForm137            = "form137"
	SlotGoodMoral          = "good_moral"
	SlotReportCard         = "report_card"
	SlotPicture            = "picture"
	SlotTranscriptRecords  = "transcript_records"
	SlotHonorableDismissal = "honorable_dismissal"
	SlotGradeSlip          = "grade_slip"
)

// StudentDocuments holds one locator per document slot. A nil pointer means
// the slot was never uploaded; empty strings are never stored.
type StudentDocuments struct {
	LRN                string  `db:"lrn"`
	BirthCert          *string `db:"birth_cert"`
	Form137            *string `db:"form137"`
	GoodMoral          *string `db:"good_moral"`
	ReportCard         *string `db:"report_card"`
	Picture            *string `db:"picture"`
	TranscriptRecords  *string `db:"transcript_records"`
	HonorableDismissal *string `db:"honorable_dismissal"`
}

// Set assigns a locator to the named slot.
func (d *StudentDocuments) Set(slot string, locator string) {
	v := locator
	switch slot {
	case SlotBirthCert:
		d.BirthCert = &v
	case SlotForm137:
		d.Form137 = &v
	case SlotGoodMoral:
		d.GoodMoral = &v
	case SlotReportCard:
		d.ReportCard = &v
	case SlotPicture:
		d.Picture = &v
	case SlotTranscriptRecords:
		d.TranscriptRecords = &v
	case SlotHonorableDismissal:
		d.HonorableDismissal = &v
	}
}

// RequiredSlots returns the document slots an applicant type must provide.
func RequiredSlots(t StudentType) []string {
	switch t {
	case StudentTypeNew:
		return []string{SlotBirthCert, SlotForm137, SlotGoodMoral, SlotReportCard}
	case StudentTypeTransferee:
		return []string{SlotTranscriptRecords, SlotHonorableDismissal}
	default:
		return nil
	}
}

// OptionalSlots returns the slots an applicant type may provide.
func OptionalSlots(t StudentType) []string {
	switch t {
	case StudentTypeNew:
		return []string{SlotPicture}
	case StudentTypeTransferee:
		return []string{SlotBirthCert, SlotPicture}
	case StudentTypeReturnee:
		return []string{SlotGradeSlip}
	default:
		return nil
	}
}
