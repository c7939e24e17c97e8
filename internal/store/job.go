package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/model"
)

type jobStore struct {
	q db.Querier
}

const jobColumns = `id, type, payload, status, attempts, last_error, created_at, updated_at`

func (s *jobStore) Enqueue(ctx context.Context, job *model.Job) error {
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO jobs (id, type, payload, status, attempts, last_error)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		job.ID, job.Type, job.Payload, job.Status, job.Attempts, job.LastError)
	return row.Scan(&job.CreatedAt, &job.UpdatedAt)
}

func (s *jobStore) GetByID(ctx context.Context, id int64) (*model.Job, error) {
	row := s.q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// ClaimNextPending claims the oldest pending job in a single conditional
// update. FOR UPDATE SKIP LOCKED makes concurrent claims race-free: two
// workers never see the same row.
func (s *jobStore) ClaimNextPending(ctx context.Context) (*model.Job, bool, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE jobs
		SET status = $1, attempts = attempts + 1, updated_at = now()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = $2
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns,
		model.JobStatusProcessing, model.JobStatusPending)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return job, true, nil
}

func (s *jobStore) MarkCompleted(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE jobs SET status = $2, last_error = NULL, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, model.JobStatusCompleted, model.JobStatusProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *jobStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE jobs SET status = $2, last_error = $3, updated_at = now()
		WHERE id = $1 AND status = $4`,
		id, model.JobStatusFailed, errMsg, model.JobStatusProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *jobStore) ResetStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE jobs SET status = $1, updated_at = now()
		WHERE status = $2 AND updated_at < $3`,
		model.JobStatusPending, model.JobStatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *jobStore) RetryFailed(ctx context.Context, maxAttempts int) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE jobs SET status = $1, updated_at = now()
		WHERE status = $2 AND attempts < $3`,
		model.JobStatusPending, model.JobStatusFailed, maxAttempts)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var job model.Job
	err := row.Scan(&job.ID, &job.Type, &job.Payload, &job.Status, &job.Attempts,
		&job.LastError, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
