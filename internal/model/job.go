package model

import (
	"encoding/json"
	"time"
)

// JobType is the closed set of delivery actions the queue worker knows how
// to execute.
type JobType string

const (
	JobTypeAssignmentEmail JobType = "assignment_email"
	JobTypeEscalationEmail JobType = "escalation_email"
	JobTypeReminderEmail   JobType = "reminder_email"
	JobTypeCompletionEmail JobType = "completion_email"
	JobTypeResolutionEmail JobType = "resolution_email"
	JobTypeRejectionEmail  JobType = "rejection_email"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is a unit of deferred work, created by the notifier and consumed by
// the queue worker. A failed job is not re-queued automatically unless the
// worker's retry policy is explicitly enabled.
type Job struct {
	ID        int64           `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    JobStatus       `json:"status"`
	Attempts  int             `json:"attempts"`
	LastError *string         `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// EmailPayload is the payload shape shared by all email job types.
type EmailPayload struct {
	RecipientID    int64  `json:"recipient_id"`
	RecipientEmail string `json:"recipient_email"`
	IssueID        int64  `json:"issue_id"`
	IssueTitle     string `json:"issue_title"`
	TaskID         *int64 `json:"task_id,omitempty"`
	Detail         string `json:"detail,omitempty"`
}
