package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/core/config"
	"civicgrid.app/core/internal/mail"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

// Worker drains the job queue: it claims one pending job at a time,
// executes the matching delivery action and records the outcome. Claiming
// is a single conditional update in the store, so concurrent workers never
// process the same job twice.
type Worker struct {
	jobs   store.JobStore
	sender mail.Sender
	cfg    config.WorkerConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(jobs store.JobStore, sender mail.Sender, cfg config.WorkerConfig) *Worker {
	return &Worker{
		jobs:      jobs,
		sender:    sender,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run drains pending jobs, then blocks on the poll interval until more
// arrive. Blocks until Stop() is called or the context ends.
func (w *Worker) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "core.worker"})

	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started",
		"poll_interval", w.cfg.PollInterval,
		"retry_failed", w.cfg.RetryFailed,
		"max_attempts", w.cfg.MaxAttempts)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.Drain(ctx); err != nil {
			slog.ErrorContext(ctx, "drain cycle error", "error", err)
		}

		if w.cfg.RetryFailed {
			if n, err := w.jobs.RetryFailed(ctx, w.cfg.MaxAttempts); err != nil {
				slog.ErrorContext(ctx, "retry pass error", "error", err)
			} else if n > 0 {
				slog.InfoContext(ctx, "re-queued failed jobs", "count", n)
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// Stop signals the worker to stop and waits for the current job to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

// Drain claims and processes jobs until no pending job remains. Exported
// for per-trigger deployments that run the worker from an external
// scheduler instead of the continuous loop.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		default:
		}

		job, ok, err := w.jobs.ClaimNextPending(ctx)
		if err != nil {
			return fmt.Errorf("claiming job: %w", err)
		}
		if !ok {
			return nil
		}

		jctx := logger.WithLogFields(ctx, logger.LogFields{JobID: logger.Ptr(job.ID)})
		if err := w.processJobSafe(jctx, job); err != nil {
			slog.ErrorContext(jctx, "job processing failed",
				"error", err,
				"job_type", job.Type,
				"attempt", job.Attempts)
			if markErr := w.jobs.MarkFailed(jctx, job.ID, err.Error()); markErr != nil {
				slog.ErrorContext(jctx, "failed to mark job failed", "error", markErr)
			}
			continue
		}

		if err := w.jobs.MarkCompleted(jctx, job.ID); err != nil {
			slog.ErrorContext(jctx, "failed to mark job completed", "error", err)
		}
	}
}

func (w *Worker) processJobSafe(ctx context.Context, job *model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in job processing",
				"panic", r,
				"job_type", job.Type)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessJob(ctx, job)
}

// ProcessJob dispatches one claimed job to its delivery action.
func (w *Worker) ProcessJob(ctx context.Context, job *model.Job) error {
	slog.InfoContext(ctx, "processing job",
		"job_type", job.Type,
		"attempt", job.Attempts)

	var payload model.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	if payload.RecipientEmail == "" {
		return fmt.Errorf("payload has no recipient email")
	}

	subject, body, err := buildEmail(job.Type, payload)
	if err != nil {
		return err
	}

	if err := w.sender.Send(ctx, payload.RecipientEmail, subject, body); err != nil {
		return fmt.Errorf("delivering %s: %w", job.Type, err)
	}
	return nil
}
