package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
)

// CompanyService manages tenants. Deleting a company only deactivates it
// because employees, surveys and payments keep referencing it.
type CompanyService struct {
	*crud[domain.Company, *domain.Company]
	employees domain.Collection[domain.Employee]
}

func NewCompanyService(store *repository.Store, cfg Config, logger *slog.Logger) *CompanyService {
	s := &CompanyService{employees: store.Employees}
	s.crud = newCrud[domain.Company]("company", store.Companies, hooks[domain.Company]{
		defaults: func(c *domain.Company) {
			c.IsActive = true
			if c.BusinessHours == nil {
				bh := domain.DefaultBusinessHours()
				c.BusinessHours = &bh
			}
		},
		validate: func(_ context.Context, c, _ *domain.Company) error {
			return c.Validate()
		},
		remove: func(c *domain.Company, _ time.Time) error {
			c.IsActive = false
			return nil
		},
		enrich: s.countEmployees,
	}, cfg, logger)
	return s
}

// countEmployees replaces EmployeeCount with the number of active employees
func (s *CompanyService) countEmployees(ctx context.Context, companies []domain.Company) error {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}
	counts := map[string]int{}
	for _, e := range employees {
		if e.IsActive {
			counts[e.CompanyID]++
		}
	}
	for i := range companies {
		companies[i].EmployeeCount = counts[companies[i].ID]
	}
	return nil
}

// ListActive returns active companies in insertion order
func (s *CompanyService) ListActive(ctx context.Context) ([]domain.Company, error) {
	items, err := s.filter(ctx, func(c *domain.Company) bool { return c.IsActive })
	if err != nil {
		return nil, err
	}
	return items, s.enrich(ctx, items)
}
