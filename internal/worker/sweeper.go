package worker

import (
	"context"
	"log/slog"
	"time"

	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/core/config"
	"civicgrid.app/core/internal/service"
)

// Sweeper drives the three periodic sweeps on their configured cadences.
// Each tick runs one sweep to completion before the next is considered;
// cadence is deployment policy, correctness never depends on it.
type Sweeper struct {
	escalation service.EscalationSweep
	priority   service.PrioritySweep
	reopen     service.ReopenSweep
	cfg        config.SweepConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewSweeper(escalation service.EscalationSweep, priority service.PrioritySweep, reopen service.ReopenSweep, cfg config.SweepConfig) *Sweeper {
	return &Sweeper{
		escalation: escalation,
		priority:   priority,
		reopen:     reopen,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Run starts the sweep loop. Blocks until Stop() is called.
func (s *Sweeper) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "core.worker.sweeper"})

	defer close(s.stoppedCh)

	escalationTicker := time.NewTicker(s.cfg.EscalationInterval)
	defer escalationTicker.Stop()
	priorityTicker := time.NewTicker(s.cfg.PriorityInterval)
	defer priorityTicker.Stop()
	reopenTicker := time.NewTicker(s.cfg.ReopenInterval)
	defer reopenTicker.Stop()

	slog.InfoContext(ctx, "sweeper started",
		"escalation_interval", s.cfg.EscalationInterval,
		"priority_interval", s.cfg.PriorityInterval,
		"reopen_interval", s.cfg.ReopenInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			slog.InfoContext(ctx, "sweeper stopping")
			return
		case <-escalationTicker.C:
			if _, err := s.escalation.Run(ctx, false); err != nil {
				slog.ErrorContext(ctx, "escalation sweep error", "error", err)
			}
		case <-priorityTicker.C:
			if _, err := s.priority.Run(ctx); err != nil {
				slog.ErrorContext(ctx, "priority sweep error", "error", err)
			}
		case <-reopenTicker.C:
			if _, err := s.reopen.Run(ctx); err != nil {
				slog.ErrorContext(ctx, "reopen sweep error", "error", err)
			}
		}
	}
}

// Stop signals the sweeper to stop gracefully.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}
