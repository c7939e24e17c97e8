package model

import "time"

// PerformanceRecord rates one staff member's work on a resolved issue.
type PerformanceRecord struct {
	UserID  int64  `json:"user_id"`
	Rating  int    `json:"rating"` // 1-5
	Comment string `json:"comment,omitempty"`
}

// ResolutionReport is produced exactly once per resolved issue by its
// supervisor. Performance records exclude the reporting supervisor.
type ResolutionReport struct {
	ID           int64               `json:"id"`
	IssueID      int64               `json:"issue_id"`
	SupervisorID int64               `json:"supervisor_id"`
	Summary      string              `json:"summary"`
	Images       []string            `json:"images,omitempty"`
	Performance  []PerformanceRecord `json:"performance,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}
