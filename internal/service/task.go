package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

// TaskService governs a single task's lifecycle: assignment, progress
// updates, proof, review and reassignment. Reviewer authorization is
// enforced by the calling layer; the state machine enforces state guards.
type TaskService interface {
	Assign(ctx context.Context, params AssignTaskParams) (*model.Task, error)
	SubmitUpdate(ctx context.Context, taskID, authorID int64, body string) (*model.Task, error)
	SubmitProof(ctx context.Context, taskID, authorID int64, text string, images []string) (*model.Task, error)
	Review(ctx context.Context, taskID, reviewerID int64, approve bool, comment string) (*model.Task, error)
	ReassignToCoordinator(ctx context.Context, taskID, supervisorID, coordinatorID int64) (*model.Task, error)
	CompleteBySupervisor(ctx context.Context, taskID, supervisorID int64, text string, images []string) (*model.Task, error)
}

type AssignTaskParams struct {
	IssueID        int64
	AssignedBy     int64
	AssignedTo     int64
	RoleOfAssignee model.StaffRole
	Deadline       time.Time
}

type taskService struct {
	issues   store.IssueStore
	tasks    store.TaskStore
	users    store.UserStore
	notifier Notifier
	recorder TimelineRecorder
	txRunner TxRunner
}

func NewTaskService(issues store.IssueStore, tasks store.TaskStore, users store.UserStore,
	notifier Notifier, recorder TimelineRecorder, txRunner TxRunner,
) TaskService {
	return &taskService{
		issues:   issues,
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		recorder: recorder,
		txRunner: txRunner,
	}
}

// Assign creates a task bound to an issue, assignor, assignee, role and
// deadline. No precondition on issue status.
func (s *taskService) Assign(ctx context.Context, params AssignTaskParams) (*model.Task, error) {
	issue, err := s.issues.GetByID(ctx, params.IssueID)
	if err != nil {
		return nil, fmt.Errorf("loading issue %d: %w", params.IssueID, err)
	}

	task := &model.Task{
		ID:             id.New(),
		IssueID:        params.IssueID,
		AssignedBy:     params.AssignedBy,
		AssignedTo:     params.AssignedTo,
		RoleOfAssignee: params.RoleOfAssignee,
		Status:         model.TaskStatusPending,
		Deadline:       params.Deadline,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.notify(ctx, Event{
		Kind:        model.NotificationAssignment,
		RecipientID: params.AssignedTo,
		IssueID:     issue.ID,
		IssueTitle:  issue.Title,
		TaskID:      &task.ID,
		Detail:      fmt.Sprintf("assigned as %s, due %s", params.RoleOfAssignee, params.Deadline.Format(time.RFC1123)),
	})
	s.record(ctx, issue.ID, TimelineEntry{
		Type:              model.TimelineTaskAssigned,
		Title:             "Task assigned",
		ActorID:           params.AssignedBy,
		TaskID:            &task.ID,
		AssignedStaffID:   &params.AssignedTo,
		AssignedStaffRole: &params.RoleOfAssignee,
	})

	return task, nil
}

// SubmitUpdate appends a timestamped note and forces the task into review.
func (s *taskService) SubmitUpdate(ctx context.Context, taskID, authorID int64, body string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task %d: %w", taskID, err)
	}
	if err := submittable(task, time.Now()); err != nil {
		return nil, err
	}

	task.Updates = append(task.Updates, model.TaskUpdate{
		AuthorID: authorID,
		Body:     body,
		At:       time.Now(),
	})
	task.Status = model.TaskStatusInReview

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task update: %w", err)
	}

	s.record(ctx, task.IssueID, TimelineEntry{
		Type:    model.TimelineTaskUpdated,
		Title:   "Progress update submitted",
		ActorID: authorID,
		TaskID:  &task.ID,
	})

	return task, nil
}

// SubmitProof sets the completion proof and moves the task into review.
func (s *taskService) SubmitProof(ctx context.Context, taskID, authorID int64, text string, images []string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task %d: %w", taskID, err)
	}
	if err := submittable(task, time.Now()); err != nil {
		return nil, err
	}

	task.ProofText = text
	task.ProofImages = images
	task.ProofSubmitted = true
	task.Status = model.TaskStatusInReview

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task proof: %w", err)
	}

	s.record(ctx, task.IssueID, TimelineEntry{
		Type:    model.TimelineTaskProofSubmitted,
		Title:   "Completion proof submitted",
		ActorID: authorID,
		TaskID:  &task.ID,
	})

	return task, nil
}

// Review approves or rejects a task in review. Approval completes the task
// (terminal). Rejection routes it back to pending and clears all proof
// fields; the assignee must resubmit.
func (s *taskService) Review(ctx context.Context, taskID, reviewerID int64, approve bool, comment string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task %d: %w", taskID, err)
	}
	if task.Status == model.TaskStatusCompleted {
		return nil, ErrTaskCompleted
	}

	issue, err := s.issues.GetByID(ctx, task.IssueID)
	if err != nil {
		return nil, fmt.Errorf("loading issue %d: %w", task.IssueID, err)
	}

	if approve {
		task.Status = model.TaskStatusCompleted
	} else {
		task.Status = model.TaskStatusPending
		task.ProofText = ""
		task.ProofImages = nil
		task.ProofSubmitted = false
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task review: %w", err)
	}

	if approve {
		s.notify(ctx, Event{
			Kind:        model.NotificationCompletion,
			RecipientID: task.AssignedTo,
			IssueID:     issue.ID,
			IssueTitle:  issue.Title,
			TaskID:      &task.ID,
			Detail:      comment,
		})
		s.record(ctx, issue.ID, TimelineEntry{
			Type:    model.TimelineTaskApproved,
			Title:   "Task approved",
			ActorID: reviewerID,
			TaskID:  &task.ID,
		})
	} else {
		s.notify(ctx, Event{
			Kind:        model.NotificationRejection,
			RecipientID: task.AssignedTo,
			IssueID:     issue.ID,
			IssueTitle:  issue.Title,
			TaskID:      &task.ID,
			Detail:      comment,
		})
		s.record(ctx, issue.ID, TimelineEntry{
			Type:        model.TimelineTaskRejected,
			Title:       "Task submission rejected",
			Description: comment,
			ActorID:     reviewerID,
			TaskID:      &task.ID,
		})
	}

	return task, nil
}

// ReassignToCoordinator replaces a supervisor's task with a fresh
// coordinator task in a single transaction. Failure at any step aborts the
// whole transaction: no orphaned new task, no lost original.
func (s *taskService) ReassignToCoordinator(ctx context.Context, taskID, supervisorID, coordinatorID int64) (*model.Task, error) {
	original, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task %d: %w", taskID, err)
	}
	if original.RoleOfAssignee != model.StaffRoleSupervisor || original.AssignedTo != supervisorID {
		return nil, ErrNotSupervisor
	}

	replacement := &model.Task{
		ID:             id.New(),
		IssueID:        original.IssueID,
		AssignedBy:     supervisorID,
		AssignedTo:     coordinatorID,
		RoleOfAssignee: model.StaffRoleCoordinator,
		Status:         model.TaskStatusPending,
		Deadline:       original.Deadline,
		EscalatedFrom:  &original.ID,
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		coordinator, err := stores.Users().GetByID(ctx, coordinatorID)
		if err != nil {
			return fmt.Errorf("loading coordinator %d: %w", coordinatorID, err)
		}
		if coordinator.Role != model.UserRoleStaff {
			return ErrNotCoordinator
		}

		if err := stores.Tasks().Create(ctx, replacement); err != nil {
			return fmt.Errorf("creating replacement task: %w", err)
		}
		if err := stores.Tasks().Delete(ctx, original.ID); err != nil {
			return fmt.Errorf("deleting original task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.GetByID(ctx, original.IssueID)
	if err != nil {
		// Reassignment committed; the issue lookup only feeds side effects.
		slog.WarnContext(ctx, "reassigned task but failed to load issue for notifications",
			"error", err, "issue_id", original.IssueID)
		return replacement, nil
	}

	s.notify(ctx, Event{
		Kind:        model.NotificationAssignment,
		RecipientID: coordinatorID,
		IssueID:     issue.ID,
		IssueTitle:  issue.Title,
		TaskID:      &replacement.ID,
		Detail:      "reassigned from supervisor",
	})
	role := model.StaffRoleCoordinator
	s.record(ctx, issue.ID, TimelineEntry{
		Type:              model.TimelineTaskReassigned,
		Title:             "Task reassigned to coordinator",
		ActorID:           supervisorID,
		TaskID:            &replacement.ID,
		AssignedStaffID:   &coordinatorID,
		AssignedStaffRole: &role,
		Metadata:          map[string]any{"original_task_id": original.ID},
	})

	return replacement, nil
}

// CompleteBySupervisor lets a supervisor close their own task directly with
// completion text and/or proof images; at least one is required.
func (s *taskService) CompleteBySupervisor(ctx context.Context, taskID, supervisorID int64, text string, images []string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task %d: %w", taskID, err)
	}
	if task.RoleOfAssignee != model.StaffRoleSupervisor || task.AssignedTo != supervisorID {
		return nil, ErrNotSupervisor
	}
	if task.Status == model.TaskStatusCompleted {
		return nil, ErrTaskCompleted
	}
	if text == "" && len(images) == 0 {
		return nil, ErrProofRequired
	}

	task.Updates = append(task.Updates, model.TaskUpdate{
		AuthorID: supervisorID,
		Body:     "completed by supervisor: " + text,
		At:       time.Now(),
	})
	if text != "" {
		task.ProofText = text
	}
	if len(images) > 0 {
		task.ProofImages = images
	}
	task.ProofSubmitted = true
	task.Status = model.TaskStatusCompleted

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("saving supervisor completion: %w", err)
	}

	s.record(ctx, task.IssueID, TimelineEntry{
		Type:    model.TimelineTaskCompleted,
		Title:   "Task completed by supervisor",
		ActorID: supervisorID,
		TaskID:  &task.ID,
	})

	return task, nil
}

// submittable is the shared guard for update and proof submission: a
// completed task is immutable and an overdue task is locked.
func submittable(task *model.Task, now time.Time) error {
	if task.Status == model.TaskStatusCompleted {
		return ErrTaskCompleted
	}
	if task.Overdue(now) {
		return ErrTaskLocked
	}
	return nil
}

// notify sends the event and logs failures; notification delivery never
// fails a state transition that already committed.
func (s *taskService) notify(ctx context.Context, event Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to dispatch notification",
			"error", err,
			"kind", event.Kind,
			"recipient_id", event.RecipientID)
	}
}

func (s *taskService) record(ctx context.Context, issueID int64, entry TimelineEntry) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{IssueID: logger.Ptr(issueID)})
	if _, err := s.recorder.Record(ctx, issueID, entry); err != nil {
		slog.WarnContext(ctx, "failed to record timeline event",
			"error", err,
			"event_type", entry.Type)
	}
}
