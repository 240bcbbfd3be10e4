package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

// SettingsService keeps one settings record per company, created on first read
type SettingsService struct {
	items     *crud[domain.Settings, *domain.Settings]
	companies domain.Collection[domain.Company]
	cfg       Config
	logger    *slog.Logger
}

func NewSettingsService(store *repository.Store, cfg Config, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	items := newCrud[domain.Settings]("settings", store.Settings, hooks[domain.Settings]{
		validate: func(_ context.Context, next, _ *domain.Settings) error {
			if next.CompanyID != next.ID {
				return domain.Invalid("companyId cannot change")
			}
			return next.Validate()
		},
	}, cfg, logger)
	return &SettingsService{items: items, companies: store.Companies, cfg: cfg, logger: logger}
}

// Get returns the company's settings, storing defaults on first access
func (s *SettingsService) Get(ctx context.Context, companyID string) (*domain.Settings, error) {
	if err := s.items.wait(ctx); err != nil {
		return nil, err
	}
	return s.ensure(ctx, companyID)
}

func (s *SettingsService) ensure(ctx context.Context, companyID string) (*domain.Settings, error) {
	if companyID == "" {
		return nil, domain.Invalid("companyId is required")
	}
	s.items.mu.Lock()
	defer s.items.mu.Unlock()

	existing, err := s.items.find(ctx, companyID)
	if err == nil {
		return existing, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	var hours *domain.BusinessHours
	company, err := s.companies.Get(ctx, companyID)
	switch {
	case err == nil:
		hours = company.BusinessHours
	case !errors.Is(err, domain.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load company %s: %w", companyID, err)
	}

	settings := domain.DefaultSettings(companyID, hours)
	now := s.cfg.now()
	settings.CreatedAt, settings.UpdatedAt = now, now
	if err := s.items.store(ctx, &settings); err != nil {
		return nil, err
	}
	s.logger.Info("default settings created", slog.String("company_id", companyID))
	return &settings, nil
}

// Update patches the company's settings
func (s *SettingsService) Update(ctx context.Context, companyID string, patch map[string]any) (*domain.Settings, error) {
	if _, err := s.ensure(ctx, companyID); err != nil {
		return nil, err
	}
	return s.items.Update(ctx, companyID, patch)
}

// UpdateBusinessHours replaces the window used to accept survey responses
func (s *SettingsService) UpdateBusinessHours(ctx context.Context, companyID string, hours domain.BusinessHours) (*domain.Settings, error) {
	if err := hours.Validate(); err != nil {
		return nil, err
	}
	return s.Update(ctx, companyID, map[string]any{"businessHours": hours.Normalized()})
}

// ToggleOutsideHours flips AllowOutsideHours
func (s *SettingsService) ToggleOutsideHours(ctx context.Context, companyID string) (*domain.Settings, error) {
	if _, err := s.ensure(ctx, companyID); err != nil {
		return nil, err
	}
	return s.items.mutate(ctx, companyID, func(st *domain.Settings) error {
		st.AllowOutsideHours = !st.AllowOutsideHours
		return nil
	})
}

// IsWithinBusinessHours is always true when outside hours are allowed,
// otherwise it compares HH:mm in the company timezone
func (s *SettingsService) IsWithinBusinessHours(ctx context.Context, companyID string, now time.Time) (bool, error) {
	st, err := s.ensure(ctx, companyID)
	if err != nil {
		return false, err
	}
	if st.AllowOutsideHours {
		return true, nil
	}
	return st.BusinessHours.Contains(now), nil
}
