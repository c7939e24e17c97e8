package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

// priorityPeriod is the age window after which an untaken issue climbs one
// step on the priority scale.
const priorityPeriod = 48 * time.Hour

// PrioritySweep raises the priority of open, untaken issues the longer
// they sit unattended. Monotonic: priority only ever moves up the scale,
// and only while the issue remains untaken.
type PrioritySweep interface {
	Run(ctx context.Context) (*PrioritySummary, error)
}

type PrioritySummary struct {
	Scanned int          `json:"scanned"`
	Raised  int          `json:"raised"`
	Errors  []SweepError `json:"errors,omitempty"`
}

type prioritySweep struct {
	issues   store.IssueStore
	recorder TimelineRecorder
}

func NewPrioritySweep(issues store.IssueStore, recorder TimelineRecorder) PrioritySweep {
	return &prioritySweep{issues: issues, recorder: recorder}
}

func (s *prioritySweep) Run(ctx context.Context) (*PrioritySummary, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Sweep: logger.Ptr("priority")})

	issues, err := s.issues.ListOpenUntaken(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing open untaken issues: %w", err)
	}

	now := time.Now()
	summary := &PrioritySummary{}
	for i := range issues {
		issue := &issues[i]
		summary.Scanned++

		target := TargetPriority(issue.Priority, issue.CreatedAt, now)
		if !target.Outranks(issue.Priority) {
			continue
		}

		previous := issue.Priority
		issue.Priority = target
		if err := s.issues.Update(ctx, issue); err != nil {
			summary.Errors = append(summary.Errors, SweepError{
				IssueID: issue.ID,
				Message: fmt.Sprintf("raising priority: %v", err),
			})
			continue
		}
		summary.Raised++

		s.record(ctx, issue.ID, TimelineEntry{
			Type:        model.TimelinePriorityRaised,
			Title:       "Priority raised",
			Description: fmt.Sprintf("priority raised from %s to %s after %s untaken", previous, target, now.Sub(issue.CreatedAt).Round(time.Hour)),
			Metadata:    map[string]any{"from": previous, "to": target},
		})
	}

	slog.InfoContext(ctx, "priority sweep finished",
		"scanned", summary.Scanned, "raised", summary.Raised, "errors", len(summary.Errors))
	return summary, nil
}

// TargetPriority computes where an issue published at createdAt should sit
// on the scale at the given time: one step per full 48-hour period elapsed,
// capped at the top of the scale. Never ranks below the current priority.
func TargetPriority(current model.Priority, createdAt, now time.Time) model.Priority {
	periods := int(now.Sub(createdAt) / priorityPeriod)
	idx := periods
	if idx > model.MaxPriorityIndex() {
		idx = model.MaxPriorityIndex()
	}
	target := model.PriorityAtIndex(idx)
	if target.Outranks(current) {
		return target
	}
	return current
}

func (s *prioritySweep) record(ctx context.Context, issueID int64, entry TimelineEntry) {
	if _, err := s.recorder.Record(ctx, issueID, entry); err != nil {
		slog.WarnContext(ctx, "failed to record priority timeline event",
			"error", err, "issue_id", issueID)
	}
}
