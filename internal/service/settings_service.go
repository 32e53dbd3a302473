package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	"github.com/noah-isme/svshs-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
)

const settingsCacheKey = "enrollment:settings"

type settingsRepository interface {
	Get(ctx context.Context) (*models.EnrollmentSettings, error)
	SetOpen(ctx context.Context, open bool) error
	SetAutoWindow(ctx context.Context, start, end *time.Time) error
}

type settingsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EnrollmentWindow is the public view of the settings row.
type EnrollmentWindow struct {
	IsOpen    bool       `json:"is_open"`
	AutoStart *time.Time `json:"auto_start,omitempty"`
	AutoEnd   *time.Time `json:"auto_end,omitempty"`
}

// SettingsService answers the enrollment-status poll (cached: the public
// form hits it on every page load) and applies admin mutations.
type SettingsService struct {
	repo   settingsRepository
	cache  settingsCache
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewSettingsService constructs the service. cache may be nil, in which case
// every read goes to the database.
func NewSettingsService(repo settingsRepository, cache settingsCache, ttl time.Duration, logger *zap.Logger, now func() time.Time) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SettingsService{repo: repo, cache: cache, logger: logger, ttl: ttl, now: now}
}

// Window returns the effective enrollment window.
func (s *SettingsService) Window(ctx context.Context) (*EnrollmentWindow, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return &EnrollmentWindow{
		IsOpen:    settings.OpenAt(s.now()),
		AutoStart: settings.AutoStart,
		AutoEnd:   settings.AutoEnd,
	}, nil
}

// IsOpen reports whether submissions are currently accepted.
func (s *SettingsService) IsOpen(ctx context.Context) (bool, error) {
	window, err := s.Window(ctx)
	if err != nil {
		return false, err
	}
	return window.IsOpen, nil
}

// Toggle flips the manual open/close switch.
func (s *SettingsService) Toggle(ctx context.Context, open bool) error {
	if err := s.repo.SetOpen(ctx, open); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	s.invalidate(ctx)
	return nil
}

// UpdateAutoWindow sets the automatic open/close date range. Dates arrive as
// "2006-01-02"; an empty pair clears the window.
func (s *SettingsService) UpdateAutoWindow(ctx context.Context, startRaw, endRaw string) error {
	var start, end *time.Time
	if startRaw != "" || endRaw != "" {
		parsedStart, err := time.Parse("2006-01-02", startRaw)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid auto_start date")
		}
		parsedEnd, err := time.Parse("2006-01-02", endRaw)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid auto_end date")
		}
		if parsedEnd.Before(parsedStart) {
			return appErrors.Clone(appErrors.ErrValidation, "auto_end must not precede auto_start")
		}
		start, end = &parsedStart, &parsedEnd
	}

	if err := s.repo.SetAutoWindow(ctx, start, end); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	s.invalidate(ctx)
	return nil
}

func (s *SettingsService) load(ctx context.Context) (*models.EnrollmentSettings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, settingsCacheKey)
		if err == nil {
			var settings models.EnrollmentSettings
			if err := json.Unmarshal([]byte(cached), &settings); err == nil {
				return &settings, nil
			}
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("settings cache read failed", zap.Error(err))
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(settings); err == nil {
			if err := s.cache.Set(ctx, settingsCacheKey, string(encoded), s.ttl); err != nil {
				s.logger.Warn("settings cache write failed", zap.Error(err))
			}
		}
	}
	return settings, nil
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.logger.Warn("settings cache invalidation failed", zap.Error(err))
	}
}
