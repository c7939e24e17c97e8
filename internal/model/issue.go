package model

import "time"

type Category string

const (
	CategoryRoad        Category = "road"
	CategoryWater       Category = "water"
	CategorySanitation  Category = "sanitation"
	CategoryElectricity Category = "electricity"
	CategoryGarbage     Category = "garbage"
	CategoryOther       Category = "other"
)

type Priority string

const (
	PriorityVeryLow  Priority = "very_low"
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// priorityScale is the escalation ladder, lowest first.
var priorityScale = []Priority{
	PriorityVeryLow,
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

// Index returns the position of p on the priority scale, or -1 for an
// unknown priority.
func (p Priority) Index() int {
	for i, candidate := range priorityScale {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Outranks reports whether p is strictly higher on the scale than other.
func (p Priority) Outranks(other Priority) bool {
	return p.Index() > other.Index()
}

// PriorityAtIndex returns the priority at the given scale position,
// clamped to the ends of the scale.
func PriorityAtIndex(i int) Priority {
	if i < 0 {
		return priorityScale[0]
	}
	if i >= len(priorityScale) {
		return priorityScale[len(priorityScale)-1]
	}
	return priorityScale[i]
}

// MaxPriorityIndex is the index of the highest priority on the scale.
func MaxPriorityIndex() int {
	return len(priorityScale) - 1
}

type IssueStatus string

const (
	IssueStatusOpen        IssueStatus = "open"
	IssueStatusInProgress  IssueStatus = "in_progress"
	IssueStatusResolved    IssueStatus = "resolved"
	IssueStatusNotResolved IssueStatus = "not_resolved"
)

// AssignedStaff is one role+user pair on an issue. An issue carries at
// most one supervisor.
type AssignedStaff struct {
	Role   StaffRole `json:"role"`
	UserID int64     `json:"user_id"`
}

type Issue struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    Category    `json:"category"`
	Priority    Priority    `json:"priority"`
	Status      IssueStatus `json:"status"`
	Location    string      `json:"location"`
	ReporterID  int64       `json:"reporter_id"`

	AssignedStaff []AssignedStaff `json:"assigned_staff,omitempty"`

	Deadline    *time.Time `json:"deadline,omitempty"`
	TakenUpBy   *int64     `json:"taken_up_by,omitempty"`
	TakenUpTime *time.Time `json:"taken_up_time,omitempty"`
	ResolvedBy  *int64     `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ReportID    *int64     `json:"report_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Supervisor returns the issue's assigned supervisor, if any.
func (i *Issue) Supervisor() *AssignedStaff {
	for idx := range i.AssignedStaff {
		if i.AssignedStaff[idx].Role == StaffRoleSupervisor {
			return &i.AssignedStaff[idx]
		}
	}
	return nil
}

// HasStaff reports whether the user already holds any role on the issue.
func (i *Issue) HasStaff(userID int64) bool {
	for _, staff := range i.AssignedStaff {
		if staff.UserID == userID {
			return true
		}
	}
	return false
}

// StaffRoleOf returns the role the user holds on the issue, if any.
func (i *Issue) StaffRoleOf(userID int64) (StaffRole, bool) {
	for _, staff := range i.AssignedStaff {
		if staff.UserID == userID {
			return staff.Role, true
		}
	}
	return "", false
}
