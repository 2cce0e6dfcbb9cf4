package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application/services"
)

type Sweeper interface {
	Run(ctx context.Context, now time.Time) (*services.SweepReport, error)
}

// SweepWorker runs the storage sweep on a fixed interval, starting
// immediately.
type SweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewSweepWorker(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *SweepWorker {
	return &SweepWorker{
		sweeper:  sweeper,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.logger.Info("sweep worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	report, err := w.sweeper.Run(ctx, w.now())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("sweep failed", "error", err)
		return
	}

	if report.Deleted == 0 && report.Purged == 0 && report.Failed == 0 {
		return
	}
	w.logger.Info("processed sweep",
		"deleted", report.Deleted,
		"purged", report.Purged,
		"failed", report.Failed)
}
