package dto

import (
	"time"

	"civicgrid.app/core/internal/model"
)

type TakeUpRequest struct {
	AdminID  int64     `json:"admin_id,string" binding:"required"`
	Deadline time.Time `json:"deadline" binding:"required"`
}

type AssignStaffRequest struct {
	ActorID int64           `json:"actor_id,string" binding:"required"`
	UserID  int64           `json:"user_id,string" binding:"required"`
	Role    model.StaffRole `json:"role" binding:"required,oneof=worker coordinator supervisor"`
}

type ResolveRequest struct {
	SupervisorID int64                    `json:"supervisor_id,string" binding:"required"`
	Summary      string                   `json:"summary" binding:"required,min=1,max=8192"`
	Images       []string                 `json:"images" binding:"omitempty,dive,url,max=2048"`
	Performance  []PerformanceRecordEntry `json:"performance" binding:"omitempty,dive"`
}

type PerformanceRecordEntry struct {
	UserID  int64  `json:"user_id,string" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1024"`
}

func (r ResolveRequest) PerformanceRecords() []model.PerformanceRecord {
	records := make([]model.PerformanceRecord, 0, len(r.Performance))
	for _, entry := range r.Performance {
		records = append(records, model.PerformanceRecord{
			UserID:  entry.UserID,
			Rating:  entry.Rating,
			Comment: entry.Comment,
		})
	}
	return records
}

type IssueResponse struct {
	ID            int64                 `json:"id,string"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      model.Category        `json:"category"`
	Priority      model.Priority        `json:"priority"`
	Status        model.IssueStatus     `json:"status"`
	Location      string                `json:"location"`
	ReporterID    int64                 `json:"reporter_id,string"`
	AssignedStaff []model.AssignedStaff `json:"assigned_staff,omitempty"`
	Deadline      *time.Time            `json:"deadline,omitempty"`
	TakenUpBy     *int64                `json:"taken_up_by,omitempty,string"`
	ResolvedBy    *int64                `json:"resolved_by,omitempty,string"`
	ResolvedAt    *time.Time            `json:"resolved_at,omitempty"`
	ReportID      *int64                `json:"report_id,omitempty,string"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func ToIssueResponse(i *model.Issue) *IssueResponse {
	return &IssueResponse{
		ID:            i.ID,
		Title:         i.Title,
		Description:   i.Description,
		Category:      i.Category,
		Priority:      i.Priority,
		Status:        i.Status,
		Location:      i.Location,
		ReporterID:    i.ReporterID,
		AssignedStaff: i.AssignedStaff,
		Deadline:      i.Deadline,
		TakenUpBy:     i.TakenUpBy,
		ResolvedBy:    i.ResolvedBy,
		ResolvedAt:    i.ResolvedAt,
		ReportID:      i.ReportID,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}
