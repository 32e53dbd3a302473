package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
)

// SettingsRepository persists the single enrollment_settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the enrollment-window settings.
func (r *SettingsRepository) Get(ctx context.Context) (*models.EnrollmentSettings, error) {
	const query = `SELECT is_open, auto_start, auto_end, updated_at FROM enrollment_settings LIMIT 1`
	var settings models.EnrollmentSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("load enrollment settings: %w", err)
	}
	return &settings, nil
}

// SetOpen flips the manual toggle.
func (r *SettingsRepository) SetOpen(ctx context.Context, open bool) error {
	const query = `UPDATE enrollment_settings SET is_open = $1, updated_at = $2`
	if _, err := r.db.ExecContext(ctx, query, open, time.Now().UTC()); err != nil {
		return fmt.Errorf("toggle enrollment: %w", err)
	}
	return nil
}

// SetAutoWindow updates the automatic open/close date range.
func (r *SettingsRepository) SetAutoWindow(ctx context.Context, start, end *time.Time) error {
	const query = `UPDATE enrollment_settings SET auto_start = $1, auto_end = $2, updated_at = $3`
	if _, err := r.db.ExecContext(ctx, query, start, end, time.Now().UTC()); err != nil {
		return fmt.Errorf("update auto schedule: %w", err)
	}
	return nil
}
