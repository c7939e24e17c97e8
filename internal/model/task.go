package model

import "time"

type StaffRole string

const (
	StaffRoleWorker      StaffRole = "worker"
	StaffRoleCoordinator StaffRole = "coordinator"
	StaffRoleSupervisor  StaffRole = "supervisor"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusInReview  TaskStatus = "in_review"
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskUpdate is one timestamped progress note on a task.
type TaskUpdate struct {
	AuthorID int64     `json:"author_id"`
	Body     string    `json:"body"`
	At       time.Time `json:"at"`
}

// Task is a unit of work tied to one issue, one assignor, one assignee and
// a role. Escalation and manual reassignment supersede a task (create new,
// delete old) rather than mutating it in place.
type Task struct {
	ID             int64      `json:"id"`
	IssueID        int64      `json:"issue_id"`
	AssignedBy     int64      `json:"assigned_by"`
	AssignedTo     int64      `json:"assigned_to"`
	RoleOfAssignee StaffRole  `json:"role_of_assignee"`
	Status         TaskStatus `json:"status"`
	Deadline       time.Time  `json:"deadline"`

	Updates []TaskUpdate `json:"updates,omitempty"`

	ProofText      string   `json:"proof_text,omitempty"`
	ProofImages    []string `json:"proof_images,omitempty"`
	ProofSubmitted bool     `json:"proof_submitted"`

	// HasEscalated is a one-way latch: a task escalates at most once.
	HasEscalated  bool   `json:"has_escalated"`
	EscalatedFrom *int64 `json:"escalated_from,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overdue reports whether the task deadline has passed at the given time.
func (t *Task) Overdue(now time.Time) bool {
	return now.After(t.Deadline)
}
