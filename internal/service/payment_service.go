package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// PaymentService manages company billing. Deleting a payment cancels it.
type PaymentService struct {
	*crud[domain.Payment, *domain.Payment]
}

func NewPaymentService(store *repository.Store, cfg Config, logger *slog.Logger) *PaymentService {
	return &PaymentService{crud: newCrud[domain.Payment]("payment", store.Payments, hooks[domain.Payment]{
		defaults: func(p *domain.Payment) {
			if p.Status == "" {
				p.Status = domain.PaymentPending
			}
			if p.Currency == "" {
				p.Currency = domain.DefaultCurrency
			}
		},
		validate: func(_ context.Context, p, prev *domain.Payment) error {
			if prev != nil && prev.Status == domain.PaymentCancelled && p.Status != domain.PaymentCancelled {
				return domain.Invalid("cancelled payments cannot be reopened")
			}
			return p.Validate()
		},
		remove: func(p *domain.Payment, _ time.Time) error {
			p.Status = domain.PaymentCancelled
			return nil
		},
	}, cfg, logger)}
}

func (s *PaymentService) ListByCompany(ctx context.Context, companyID string, p pagination.Params) (pagination.Page[domain.Payment], error) {
	return s.query(ctx, func(pm *domain.Payment) bool { return pm.CompanyID == companyID }, p)
}

func (s *PaymentService) ListByStatus(ctx context.Context, status domain.PaymentStatus, p pagination.Params) (pagination.Page[domain.Payment], error) {
	return s.query(ctx, func(pm *domain.Payment) bool { return pm.Status == status }, p)
}

// MarkAsPaid records payment now. Cancelled payments cannot be paid.
func (s *PaymentService) MarkAsPaid(ctx context.Context, id string) (*domain.Payment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	now := s.cfg.now()
	p, err := s.mutate(ctx, id, func(p *domain.Payment) error {
		switch p.Status {
		case domain.PaymentCancelled:
			return domain.Invalid("cancelled payments cannot be paid")
		case domain.PaymentPaid:
			return domain.Conflict("payment already paid")
		}
		p.Status = domain.PaymentPaid
		p.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment marked as paid",
		slog.String("payment_id", id),
		slog.String("company_id", p.CompanyID),
	)
	return p, nil
}

func (s *PaymentService) Stats(ctx context.Context) (domain.PaymentStats, error) {
	var stats domain.PaymentStats
	if err := s.wait(ctx); err != nil {
		return stats, err
	}
	items, err := s.list(ctx)
	if err != nil {
		return stats, err
	}
	for _, p := range items {
		stats.Total++
		stats.TotalAmount += p.Amount
		switch p.Status {
		case domain.PaymentPaid:
			stats.Paid++
			stats.PaidAmount += p.Amount
		case domain.PaymentPending:
			stats.Pending++
		case domain.PaymentOverdue:
			stats.Overdue++
		}
	}
	return stats, nil
}

// MarkOverdue flips pending payments past their due date to overdue
func (s *PaymentService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.filter(ctx, func(p *domain.Payment) bool { return p.PastDue(now) })
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range due {
		_, err := s.mutate(ctx, p.ID, func(p *domain.Payment) error {
			if !p.PastDue(now) {
				return errSkip
			}
			p.Status = domain.PaymentOverdue
			return nil
		})
		switch {
		case err == nil:
			n++
		case err == errSkip:
		default:
			return n, err
		}
	}
	return n, nil
}
