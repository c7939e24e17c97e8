package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/model"
)

type taskStore struct {
	q db.Querier
}

const taskColumns = `id, issue_id, assigned_by, assigned_to, role_of_assignee, status, deadline,
	updates, proof_text, proof_images, proof_submitted, has_escalated, escalated_from,
	created_at, updated_at`

func (s *taskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	row := s.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	updatesJSON, err := json.Marshal(task.Updates)
	if err != nil {
		return fmt.Errorf("marshaling updates: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO tasks (id, issue_id, assigned_by, assigned_to, role_of_assignee, status, deadline,
			updates, proof_text, proof_images, proof_submitted, has_escalated, escalated_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		task.ID, task.IssueID, task.AssignedBy, task.AssignedTo, task.RoleOfAssignee, task.Status,
		task.Deadline, updatesJSON, task.ProofText, task.ProofImages, task.ProofSubmitted,
		task.HasEscalated, task.EscalatedFrom)
	return row.Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (s *taskStore) Update(ctx context.Context, task *model.Task) error {
	updatesJSON, err := json.Marshal(task.Updates)
	if err != nil {
		return fmt.Errorf("marshaling updates: %w", err)
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE tasks
		SET status = $2, deadline = $3, updates = $4, proof_text = $5, proof_images = $6,
			proof_submitted = $7, has_escalated = $8, updated_at = now()
		WHERE id = $1`,
		task.ID, task.Status, task.Deadline, updatesJSON, task.ProofText, task.ProofImages,
		task.ProofSubmitted, task.HasEscalated)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *taskStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *taskStore) DeleteByIssue(ctx context.Context, issueID int64) error {
	_, err := s.q.Exec(ctx, `DELETE FROM tasks WHERE issue_id = $1`, issueID)
	return err
}

func (s *taskStore) ListOverdueUnescalated(ctx context.Context, now time.Time) ([]model.Task, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE deadline < $1 AND status <> $2 AND has_escalated = false
		ORDER BY deadline`,
		now, model.TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (s *taskStore) CountByAssignee(ctx context.Context, userID int64) (int, int, error) {
	var total, completed int
	err := s.q.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE status = $2)
		FROM tasks WHERE assigned_to = $1`,
		userID, model.TaskStatusCompleted).Scan(&total, &completed)
	if err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	var updatesJSON []byte

	err := row.Scan(
		&task.ID, &task.IssueID, &task.AssignedBy, &task.AssignedTo, &task.RoleOfAssignee,
		&task.Status, &task.Deadline, &updatesJSON, &task.ProofText, &task.ProofImages,
		&task.ProofSubmitted, &task.HasEscalated, &task.EscalatedFrom,
		&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(updatesJSON) > 0 {
		if err := json.Unmarshal(updatesJSON, &task.Updates); err != nil {
			return nil, fmt.Errorf("unmarshaling updates: %w", err)
		}
	}

	return &task, nil
}
