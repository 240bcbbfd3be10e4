package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/reliability/retry"
)

// ReportProcessor builds queued reports
type ReportProcessor interface {
	Queue() <-chan string
	Process(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, cause error) error
}

// ReportWorker drains the report queue, building each report after delay
type ReportWorker struct {
	reports ReportProcessor
	delay   time.Duration
	retry   *retry.Config
	logger  *slog.Logger
}

func NewReportWorker(reports ReportProcessor, delay time.Duration, logger *slog.Logger) *ReportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWorker{
		reports: reports,
		delay:   delay,
		retry: &retry.Config{
			MaxAttempts:       3,
			InitialBackoff:    200 * time.Millisecond,
			MaxBackoff:        2 * time.Second,
			BackoffMultiplier: 2,
		},
		logger: logger,
	}
}

// Start processes reports one at a time until ctx is done
func (w *ReportWorker) Start(ctx context.Context) {
	w.logger.Info("report worker started", slog.Duration("delay", w.delay))
	queue := w.reports.Queue()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("report worker stopped")
			return
		case id := <-queue:
			if !w.wait(ctx) {
				w.logger.Info("report worker stopped")
				return
			}
			w.build(ctx, id)
		}
	}
}

func (w *ReportWorker) wait(ctx context.Context) bool {
	if w.delay <= 0 {
		return true
	}
	timer := time.NewTimer(w.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *ReportWorker) build(ctx context.Context, id string) {
	logger := w.logger.With(slog.String("report_id", id))
	_, err := retry.Do(ctx, w.retry, logger, "process_report", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.reports.Process(ctx, id)
	})
	if err == nil {
		return
	}
	logger.Error("report processing failed", slog.String("error", err.Error()))

	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.reports.Fail(failCtx, id, err); err != nil {
		logger.Error("failed to mark report as errored", slog.String("error", err.Error()))
	}
}
