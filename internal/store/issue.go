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

type issueStore struct {
	q db.Querier
}

const issueColumns = `id, title, description, category, priority, status, location, reporter_id,
	assigned_staff, deadline, taken_up_by, taken_up_time, resolved_by, resolved_at, report_id,
	created_at, updated_at`

func (s *issueStore) GetByID(ctx context.Context, id int64) (*model.Issue, error) {
	row := s.q.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
	issue, err := scanIssue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return issue, nil
}

func (s *issueStore) Create(ctx context.Context, issue *model.Issue) error {
	staffJSON, err := json.Marshal(issue.AssignedStaff)
	if err != nil {
		return fmt.Errorf("marshaling assigned staff: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO issues (id, title, description, category, priority, status, location, reporter_id,
			assigned_staff, deadline, taken_up_by, taken_up_time, resolved_by, resolved_at, report_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		issue.ID, issue.Title, issue.Description, issue.Category, issue.Priority, issue.Status,
		issue.Location, issue.ReporterID, staffJSON, issue.Deadline, issue.TakenUpBy,
		issue.TakenUpTime, issue.ResolvedBy, issue.ResolvedAt, issue.ReportID)
	return row.Scan(&issue.CreatedAt, &issue.UpdatedAt)
}

func (s *issueStore) Update(ctx context.Context, issue *model.Issue) error {
	staffJSON, err := json.Marshal(issue.AssignedStaff)
	if err != nil {
		return fmt.Errorf("marshaling assigned staff: %w", err)
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE issues
		SET title = $2, description = $3, category = $4, priority = $5, status = $6, location = $7,
			assigned_staff = $8, deadline = $9, taken_up_by = $10, taken_up_time = $11,
			resolved_by = $12, resolved_at = $13, report_id = $14, updated_at = now()
		WHERE id = $1`,
		issue.ID, issue.Title, issue.Description, issue.Category, issue.Priority, issue.Status,
		issue.Location, staffJSON, issue.Deadline, issue.TakenUpBy, issue.TakenUpTime,
		issue.ResolvedBy, issue.ResolvedAt, issue.ReportID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *issueStore) ListByCategory(ctx context.Context, category model.Category) ([]model.Issue, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE category = $1 ORDER BY created_at`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (s *issueStore) ListOpenUntaken(ctx context.Context) ([]model.Issue, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+issueColumns+` FROM issues
		WHERE status = $1 AND priority <> $2 AND taken_up_by IS NULL
		ORDER BY created_at`,
		model.IssueStatusOpen, model.PriorityCritical)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (s *issueStore) ListExpiredUnresolved(ctx context.Context, now time.Time) ([]model.Issue, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+issueColumns+` FROM issues
		WHERE deadline IS NOT NULL AND deadline < $1
			AND resolved_at IS NULL
			AND status NOT IN ($2, $3)
		ORDER BY created_at`,
		now, model.IssueStatusResolved, model.IssueStatusNotResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (s *issueStore) ListTitles(ctx context.Context, pattern string) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT title FROM issues WHERE title ILIKE $1`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func scanIssue(row pgx.Row) (*model.Issue, error) {
	var issue model.Issue
	var staffJSON []byte

	err := row.Scan(
		&issue.ID, &issue.Title, &issue.Description, &issue.Category, &issue.Priority,
		&issue.Status, &issue.Location, &issue.ReporterID, &staffJSON, &issue.Deadline,
		&issue.TakenUpBy, &issue.TakenUpTime, &issue.ResolvedBy, &issue.ResolvedAt,
		&issue.ReportID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(staffJSON) > 0 {
		if err := json.Unmarshal(staffJSON, &issue.AssignedStaff); err != nil {
			return nil, fmt.Errorf("unmarshaling assigned staff: %w", err)
		}
	}

	return &issue, nil
}

func scanIssues(rows pgx.Rows) ([]model.Issue, error) {
	var issues []model.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, rows.Err()
}
