package store

import (
	"context"
	"encoding/json"
	"fmt"

	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/model"
)

type timelineStore struct {
	q db.Querier
}

func (s *timelineStore) Append(ctx context.Context, event *model.TimelineEvent) error {
	metadataJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO timeline_events (id, issue_id, type, title, description, actor_id, actor_role,
			task_id, assigned_staff_id, assigned_staff_role, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		event.ID, event.IssueID, event.Type, event.Title, event.Description, event.ActorID,
		event.ActorRole, event.TaskID, event.AssignedStaffID, event.AssignedStaffRole, metadataJSON)
	return row.Scan(&event.CreatedAt)
}

func (s *timelineStore) ListByIssue(ctx context.Context, issueID int64) ([]model.TimelineEvent, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, issue_id, type, title, description, actor_id, actor_role,
			task_id, assigned_staff_id, assigned_staff_role, metadata, created_at
		FROM timeline_events
		WHERE issue_id = $1
		ORDER BY created_at`,
		issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.TimelineEvent
	for rows.Next() {
		var event model.TimelineEvent
		var metadataJSON []byte
		err := rows.Scan(&event.ID, &event.IssueID, &event.Type, &event.Title, &event.Description,
			&event.ActorID, &event.ActorRole, &event.TaskID, &event.AssignedStaffID,
			&event.AssignedStaffRole, &metadataJSON, &event.CreatedAt)
		if err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
