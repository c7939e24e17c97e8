package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/push"
	"civicgrid.app/core/internal/store"
)

// Notifier fans one lifecycle event out to the recipient's channels: an
// in-app notification record, a best-effort real-time push, and a queued
// job for the slower email delivery.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Event is one lifecycle event needing human notice.
type Event struct {
	Kind        model.NotificationKind
	RecipientID int64
	IssueID     int64
	IssueTitle  string
	TaskID      *int64
	Detail      string
}

var kindToJobType = map[model.NotificationKind]model.JobType{
	model.NotificationAssignment:       model.JobTypeAssignmentEmail,
	model.NotificationEscalation:       model.JobTypeEscalationEmail,
	model.NotificationDeadlineReminder: model.JobTypeReminderEmail,
	model.NotificationCompletion:       model.JobTypeCompletionEmail,
	model.NotificationResolution:       model.JobTypeResolutionEmail,
	model.NotificationRejection:        model.JobTypeRejectionEmail,
}

var kindTitles = map[model.NotificationKind]string{
	model.NotificationAssignment:       "New task assigned",
	model.NotificationEscalation:       "Task escalated to you",
	model.NotificationDeadlineReminder: "Task deadline approaching",
	model.NotificationCompletion:       "Task completed",
	model.NotificationResolution:       "Issue resolved",
	model.NotificationRejection:        "Task submission rejected",
}

type notifier struct {
	users         store.UserStore
	notifications store.NotificationStore
	jobs          store.JobStore
	publisher     push.Publisher
}

func NewNotifier(users store.UserStore, notifications store.NotificationStore, jobs store.JobStore, publisher push.Publisher) Notifier {
	if publisher == nil {
		publisher = push.Noop{}
	}
	return &notifier{
		users:         users,
		notifications: notifications,
		jobs:          jobs,
		publisher:     publisher,
	}
}

// Notify creates the notification record and enqueues the email job
// concurrently. The two writes are not transactional with each other: a
// partial failure can leave one without the other. That gap is accepted;
// the combined error is returned so the caller can at least see it.
func (n *notifier) Notify(ctx context.Context, event Event) error {
	jobType, ok := kindToJobType[event.Kind]
	if !ok {
		return fmt.Errorf("unknown notification kind %q", event.Kind)
	}

	recipient, err := n.users.GetByID(ctx, event.RecipientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("notification recipient %d: %w", event.RecipientID, err)
		}
		return fmt.Errorf("loading notification recipient: %w", err)
	}

	title := kindTitles[event.Kind]
	body := fmt.Sprintf("%s: %s", event.IssueTitle, event.Detail)
	if event.Detail == "" {
		body = event.IssueTitle
	}

	// Best-effort real-time push; failures are logged by the publisher and
	// never block the durable writes.
	n.publisher.Publish(ctx, event.RecipientID, push.Event{
		Kind:    string(event.Kind),
		Title:   title,
		Body:    body,
		IssueID: event.IssueID,
		TaskID:  event.TaskID,
	})

	payload, err := json.Marshal(model.EmailPayload{
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
		IssueID:        event.IssueID,
		IssueTitle:     event.IssueTitle,
		TaskID:         event.TaskID,
		Detail:         event.Detail,
	})
	if err != nil {
		return fmt.Errorf("marshaling email payload: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		record := &model.Notification{
			ID:     id.New(),
			UserID: event.RecipientID,
			Kind:   event.Kind,
			Title:  title,
			Body:   body,
		}
		if err := n.notifications.Create(gctx, record); err != nil {
			return fmt.Errorf("creating notification record: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		job := &model.Job{
			ID:      id.New(),
			Type:    jobType,
			Payload: payload,
			Status:  model.JobStatusPending,
		}
		if err := n.jobs.Enqueue(gctx, job); err != nil {
			return fmt.Errorf("enqueueing %s job: %w", jobType, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "notification dispatch partially failed",
			"error", err,
			"kind", event.Kind,
			"recipient_id", event.RecipientID)
		return err
	}
	return nil
}
