package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
)

// CycleCloser closes survey cycles whose end date has passed
type CycleCloser interface {
	CloseExpired(ctx context.Context, now time.Time) (cycles, surveys int, err error)
}

// OverdueMarker flips past-due payments to overdue
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// LifecycleWorker periodically moves time-bound records to their next state
type LifecycleWorker struct {
	surveys  CycleCloser
	payments OverdueMarker
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewLifecycleWorker creates a new lifecycle worker
func NewLifecycleWorker(surveys CycleCloser, payments OverdueMarker, interval time.Duration, logger *slog.Logger) *LifecycleWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleWorker{
		surveys:  surveys,
		payments: payments,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Start runs one sweep immediately and then one per interval until ctx is done
func (w *LifecycleWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("lifecycle worker started", slog.Duration("interval", w.interval))
	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("lifecycle worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep closes expired cycles and marks overdue payments. A failing step is
// logged and does not stop the other.
func (w *LifecycleWorker) Sweep(ctx context.Context) {
	now := w.now()

	if w.surveys != nil {
		cycles, surveys, err := w.surveys.CloseExpired(ctx, now)
		if err != nil {
			w.logger.Error("failed to close expired cycles", slog.String("error", err.Error()))
			metrics.ObserveLifecycle("cycle", "error", 1)
		}
		metrics.ObserveLifecycle("cycle", "closed", cycles)
		metrics.ObserveLifecycle("survey", "closed", surveys)
		if cycles > 0 || surveys > 0 {
			w.logger.Info("expired cycles closed",
				slog.Int("cycles", cycles),
				slog.Int("surveys", surveys),
			)
		}
	}

	if w.payments != nil {
		n, err := w.payments.MarkOverdue(ctx, now)
		if err != nil {
			w.logger.Error("failed to mark overdue payments", slog.String("error", err.Error()))
			metrics.ObserveLifecycle("payment", "error", 1)
		}
		metrics.ObserveLifecycle("payment", "overdue", n)
		if n > 0 {
			w.logger.Info("payments marked overdue", slog.Int("count", n))
		}
	}
}
