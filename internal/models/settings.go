package models

import "time"

// EnrollmentSettings is the single-row enrollment_settings table: a manual
// open/close toggle plus an optional auto-open window.
type EnrollmentSettings struct {
	IsOpen    bool       `db:"is_open"`
	AutoStart *time.Time `db:"auto_start"`
	AutoEnd   *time.Time `db:"auto_end"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// OpenAt resolves the effective window state at the given instant. A
// configured auto window overrides the manual toggle while it is in effect,
// and forces the window closed once it has passed.
func (s EnrollmentSettings) OpenAt(now time.Time) bool {
	open := s.IsOpen
	if s.AutoStart != nil && s.AutoEnd != nil {
		if !now.Before(*s.AutoStart) && !now.After(*s.AutoEnd) {
			open = true
		} else if now.After(*s.AutoEnd) {
			open = false
		}
	}
	return open
}
