package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

// escalationExtension is added to the original deadline when a task moves
// one rung up the ladder.
const escalationExtension = 48 * time.Hour

// EscalationSweep promotes overdue, non-escalated tasks one rung up the
// role ladder. Idempotent under repeated runs: the HasEscalated latch on
// the original task guarantees at most one escalation per task regardless
// of how many sweeps observe it as overdue.
type EscalationSweep interface {
	Run(ctx context.Context, dryRun bool) (*EscalationSummary, error)
}

// EscalationSummary reports what one sweep run did (or, in dry-run mode,
// would have done).
type EscalationSummary struct {
	Processed           int          `json:"processed"`
	SkippedNoSupervisor int          `json:"skipped_no_supervisor"`
	SkippedNoAssignor   int          `json:"skipped_no_assignor"`
	SkippedTopOfLadder  int          `json:"skipped_top_of_ladder"`
	Created             []model.Task `json:"created"`
	Errors              []SweepError `json:"errors,omitempty"`
	DryRun              bool         `json:"dry_run"`
}

// SweepError attributes one per-item failure to the entity it hit.
type SweepError struct {
	TaskID  int64  `json:"task_id,omitempty"`
	IssueID int64  `json:"issue_id,omitempty"`
	Message string `json:"message"`
}

type escalationSweep struct {
	issues   store.IssueStore
	tasks    store.TaskStore
	users    store.UserStore
	notifier Notifier
	recorder TimelineRecorder
}

func NewEscalationSweep(issues store.IssueStore, tasks store.TaskStore, users store.UserStore,
	notifier Notifier, recorder TimelineRecorder,
) EscalationSweep {
	return &escalationSweep{
		issues:   issues,
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		recorder: recorder,
	}
}

// Run processes every overdue, non-escalated task. Per-task failures are
// recorded in the summary and never abort the sweep. In dry-run mode the
// sweep computes intended actions without mutating state or notifying.
func (s *escalationSweep) Run(ctx context.Context, dryRun bool) (*EscalationSummary, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Sweep: logger.Ptr("escalation")})

	overdue, err := s.tasks.ListOverdueUnescalated(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("listing overdue tasks: %w", err)
	}

	summary := &EscalationSummary{DryRun: dryRun}
	for i := range overdue {
		task := &overdue[i]
		summary.Processed++
		if err := s.escalate(ctx, task, dryRun, summary); err != nil {
			summary.Errors = append(summary.Errors, SweepError{
				TaskID:  task.ID,
				IssueID: task.IssueID,
				Message: err.Error(),
			})
			slog.WarnContext(ctx, "task escalation failed",
				"error", err, "task_id", task.ID, "issue_id", task.IssueID)
		}
	}

	slog.InfoContext(ctx, "escalation sweep finished",
		"processed", summary.Processed,
		"created", len(summary.Created),
		"skipped_no_supervisor", summary.SkippedNoSupervisor,
		"skipped_no_assignor", summary.SkippedNoAssignor,
		"errors", len(summary.Errors),
		"dry_run", dryRun)
	return summary, nil
}

func (s *escalationSweep) escalate(ctx context.Context, task *model.Task, dryRun bool, summary *EscalationSummary) error {
	issue, err := s.issues.GetByID(ctx, task.IssueID)
	if err != nil {
		return fmt.Errorf("loading issue %d: %w", task.IssueID, err)
	}

	supervisor := issue.Supervisor()
	if supervisor == nil {
		summary.SkippedNoSupervisor++
		return nil
	}

	newDeadline := task.Deadline.Add(escalationExtension)

	var replacement *model.Task
	switch task.RoleOfAssignee {
	case model.StaffRoleWorker:
		// A worker's overdue task goes back to the coordinator who handed
		// it out.
		if _, err := s.users.GetByID(ctx, task.AssignedBy); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				summary.SkippedNoAssignor++
				return nil
			}
			return fmt.Errorf("loading assignor %d: %w", task.AssignedBy, err)
		}
		replacement = &model.Task{
			ID:             id.New(),
			IssueID:        task.IssueID,
			AssignedBy:     supervisor.UserID,
			AssignedTo:     task.AssignedBy,
			RoleOfAssignee: model.StaffRoleCoordinator,
			Status:         model.TaskStatusPending,
			Deadline:       newDeadline,
			EscalatedFrom:  &task.ID,
		}
	case model.StaffRoleCoordinator:
		replacement = &model.Task{
			ID:             id.New(),
			IssueID:        task.IssueID,
			AssignedBy:     supervisor.UserID,
			AssignedTo:     supervisor.UserID,
			RoleOfAssignee: model.StaffRoleSupervisor,
			Status:         model.TaskStatusPending,
			Deadline:       newDeadline,
			EscalatedFrom:  &task.ID,
		}
	case model.StaffRoleSupervisor:
		// Top of the ladder, nowhere to go.
		summary.SkippedTopOfLadder++
		return nil
	default:
		return fmt.Errorf("unknown assignee role %q", task.RoleOfAssignee)
	}

	if dryRun {
		summary.Created = append(summary.Created, *replacement)
		return nil
	}

	if err := s.tasks.Create(ctx, replacement); err != nil {
		return fmt.Errorf("creating escalated task: %w", err)
	}

	// Flip the latch only after the replacement exists. If the latch write
	// fails the next sweep retries from scratch; a duplicate escalated task
	// is preferable to a silently dropped one.
	task.HasEscalated = true
	if err := s.tasks.Update(ctx, task); err != nil {
		return fmt.Errorf("latching escalated task %d: %w", task.ID, err)
	}

	summary.Created = append(summary.Created, *replacement)

	s.notify(ctx, Event{
		Kind:        model.NotificationEscalation,
		RecipientID: replacement.AssignedTo,
		IssueID:     issue.ID,
		IssueTitle:  issue.Title,
		TaskID:      &replacement.ID,
		Detail:      fmt.Sprintf("overdue %s task escalated, new deadline %s", task.RoleOfAssignee, newDeadline.Format(time.RFC1123)),
	})
	s.notify(ctx, Event{
		Kind:        model.NotificationAssignment,
		RecipientID: replacement.AssignedTo,
		IssueID:     issue.ID,
		IssueTitle:  issue.Title,
		TaskID:      &replacement.ID,
		Detail:      fmt.Sprintf("assigned as %s via escalation", replacement.RoleOfAssignee),
	})
	s.record(ctx, issue.ID, TimelineEntry{
		Type:              model.TimelineTaskEscalated,
		Title:             "Task escalated",
		Description:       fmt.Sprintf("overdue %s task escalated to %s", task.RoleOfAssignee, replacement.RoleOfAssignee),
		ActorID:           supervisor.UserID,
		TaskID:            &replacement.ID,
		AssignedStaffID:   &replacement.AssignedTo,
		AssignedStaffRole: &replacement.RoleOfAssignee,
		Metadata:          map[string]any{"escalated_from": task.ID},
	})

	return nil
}

func (s *escalationSweep) notify(ctx context.Context, event Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to dispatch escalation notification",
			"error", err, "kind", event.Kind, "recipient_id", event.RecipientID)
	}
}

func (s *escalationSweep) record(ctx context.Context, issueID int64, entry TimelineEntry) {
	if _, err := s.recorder.Record(ctx, issueID, entry); err != nil {
		slog.WarnContext(ctx, "failed to record escalation timeline event",
			"error", err, "issue_id", issueID)
	}
}
