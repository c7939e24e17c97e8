package model

import "time"

// TimelineEventType is the closed set of lifecycle events recorded on an
// issue's timeline.
type TimelineEventType string

const (
	TimelineIssueReported      TimelineEventType = "issue_reported"
	TimelineIssueTakenUp       TimelineEventType = "issue_taken_up"
	TimelineStaffAssigned      TimelineEventType = "staff_assigned"
	TimelineTaskAssigned       TimelineEventType = "task_assigned"
	TimelineTaskUpdated        TimelineEventType = "task_updated"
	TimelineTaskProofSubmitted TimelineEventType = "task_proof_submitted"
	TimelineTaskApproved       TimelineEventType = "task_approved"
	TimelineTaskRejected       TimelineEventType = "task_rejected"
	TimelineTaskReassigned     TimelineEventType = "task_reassigned"
	TimelineTaskEscalated      TimelineEventType = "task_escalated"
	TimelineTaskCompleted      TimelineEventType = "task_completed"
	TimelineIssueResolved      TimelineEventType = "issue_resolved"
	TimelineIssueReopened      TimelineEventType = "issue_reopened"
	TimelinePriorityRaised     TimelineEventType = "priority_raised"
)

// ActorRole is the actor's effective role at the moment an event is
// recorded: their issue-specific staff role when they hold one, otherwise a
// generic role. Resolved once at recording time, never stored on the user.
type ActorRole string

const (
	ActorRoleCitizen           ActorRole = "citizen"
	ActorRoleMunicipalityAdmin ActorRole = "municipality_admin"
	ActorRoleWorker            ActorRole = ActorRole(StaffRoleWorker)
	ActorRoleCoordinator       ActorRole = ActorRole(StaffRoleCoordinator)
	ActorRoleSupervisor        ActorRole = ActorRole(StaffRoleSupervisor)
)

// TimelineEvent is an append-only audit record. Never mutated or deleted.
type TimelineEvent struct {
	ID          int64             `json:"id"`
	IssueID     int64             `json:"issue_id"`
	Type        TimelineEventType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	ActorID     int64             `json:"actor_id"`
	ActorRole   ActorRole         `json:"actor_role"`

	TaskID            *int64     `json:"task_id,omitempty"`
	AssignedStaffID   *int64     `json:"assigned_staff_id,omitempty"`
	AssignedStaffRole *StaffRole `json:"assigned_staff_role,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
