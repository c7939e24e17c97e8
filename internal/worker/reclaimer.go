package worker

import (
	"context"
	"log/slog"
	"time"

	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/internal/store"
)

type ReclaimerConfig struct {
	// Jobs stuck in processing for longer than MinIdle are reset to pending.
	MinIdle  time.Duration
	Interval time.Duration
}

// Reclaimer periodically returns stale processing jobs to the pending
// queue. This handles the crash recovery scenario where a worker dies
// after claiming a job but before marking the outcome.
type Reclaimer struct {
	jobs store.JobStore
	cfg  ReclaimerConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewReclaimer creates a new Reclaimer.
func NewReclaimer(jobs store.JobStore, cfg ReclaimerConfig) *Reclaimer {
	return &Reclaimer{
		jobs:      jobs,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the reclaimer loop. Blocks until Stop() is called.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "core.worker.reclaimer"})

	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-r.cfg.MinIdle)
			n, err := r.jobs.ResetStuck(ctx, cutoff)
			if err != nil {
				slog.ErrorContext(ctx, "reclaim cycle error", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "reclaimed stuck jobs", "count", n)
			}
		}
	}
}

// Stop signals the reclaimer to stop gracefully.
func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}
