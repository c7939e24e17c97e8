package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/model"
)

type reportStore struct {
	q db.Querier
}

func (s *reportStore) Create(ctx context.Context, report *model.ResolutionReport) error {
	performanceJSON, err := json.Marshal(report.Performance)
	if err != nil {
		return fmt.Errorf("marshaling performance records: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO resolution_reports (id, issue_id, supervisor_id, summary, images, performance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		report.ID, report.IssueID, report.SupervisorID, report.Summary, report.Images, performanceJSON)
	return row.Scan(&report.CreatedAt)
}

func (s *reportStore) GetByIssue(ctx context.Context, issueID int64) (*model.ResolutionReport, error) {
	var report model.ResolutionReport
	var performanceJSON []byte

	row := s.q.QueryRow(ctx, `
		SELECT id, issue_id, supervisor_id, summary, images, performance, created_at
		FROM resolution_reports WHERE issue_id = $1`,
		issueID)
	err := row.Scan(&report.ID, &report.IssueID, &report.SupervisorID, &report.Summary,
		&report.Images, &performanceJSON, &report.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(performanceJSON) > 0 {
		if err := json.Unmarshal(performanceJSON, &report.Performance); err != nil {
			return nil, fmt.Errorf("unmarshaling performance records: %w", err)
		}
	}

	return &report, nil
}
