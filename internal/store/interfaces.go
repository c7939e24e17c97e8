package store

import (
	"context"
	"errors"
	"time"

	"civicgrid.app/core/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// IssueStore defines the contract for issue data access
type IssueStore interface {
	GetByID(ctx context.Context, id int64) (*model.Issue, error)
	Create(ctx context.Context, issue *model.Issue) error
	Update(ctx context.Context, issue *model.Issue) error
	ListByCategory(ctx context.Context, category model.Category) ([]model.Issue, error)
	// ListOpenUntaken returns open, not-yet-taken-up issues below critical
	// priority, oldest first.
	ListOpenUntaken(ctx context.Context) ([]model.Issue, error)
	// ListExpiredUnresolved returns issues whose deadline passed before now
	// with no resolution and a non-terminal status.
	ListExpiredUnresolved(ctx context.Context, now time.Time) ([]model.Issue, error)
	// ListTitles returns the titles of issues matching the ILIKE pattern.
	ListTitles(ctx context.Context, pattern string) ([]string, error)
}

// TaskStore defines the contract for task data access
type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id int64) error
	DeleteByIssue(ctx context.Context, issueID int64) error
	// ListOverdueUnescalated returns tasks with deadline < now, status not
	// completed and the escalation latch unset, oldest deadline first.
	ListOverdueUnescalated(ctx context.Context, now time.Time) ([]model.Task, error)
	// CountByAssignee returns the total and completed task counts for a user.
	CountByAssignee(ctx context.Context, userID int64) (total int, completed int, err error)
}

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ListByExpertise(ctx context.Context, category model.Category) ([]model.User, error)
}

// JobStore defines the contract for queue job data access
type JobStore interface {
	Enqueue(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id int64) (*model.Job, error)
	// ClaimNextPending atomically claims the oldest pending job: sets it to
	// processing and increments attempts in one conditional update so
	// concurrent workers cannot double-claim. Returns false when no pending
	// job exists.
	ClaimNextPending(ctx context.Context) (*model.Job, bool, error)
	MarkCompleted(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	// ResetStuck returns jobs stuck in processing since before the cutoff
	// back to pending. Returns the number of jobs reset.
	ResetStuck(ctx context.Context, cutoff time.Time) (int64, error)
	// RetryFailed re-queues failed jobs with fewer than maxAttempts attempts.
	// Only called when the retry policy is explicitly enabled.
	RetryFailed(ctx context.Context, maxAttempts int) (int64, error)
}

// NotificationStore defines the contract for notification data access
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int32) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64, userID int64) error
}

// TimelineStore defines the contract for timeline event data access
type TimelineStore interface {
	Append(ctx context.Context, event *model.TimelineEvent) error
	ListByIssue(ctx context.Context, issueID int64) ([]model.TimelineEvent, error)
}

// ReportStore defines the contract for resolution report data access
type ReportStore interface {
	Create(ctx context.Context, report *model.ResolutionReport) error
	GetByIssue(ctx context.Context, issueID int64) (*model.ResolutionReport, error)
}
