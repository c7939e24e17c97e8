package model

import "time"

// NotificationKind mirrors the lifecycle events that need human notice.
type NotificationKind string

const (
	NotificationAssignment       NotificationKind = "assignment"
	NotificationEscalation       NotificationKind = "escalation"
	NotificationDeadlineReminder NotificationKind = "deadline_reminder"
	NotificationCompletion       NotificationKind = "completion"
	NotificationResolution       NotificationKind = "resolution"
	NotificationRejection        NotificationKind = "rejection"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
