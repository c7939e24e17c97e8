package dto

import (
	"time"

	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/service"
)

type AssignTaskRequest struct {
	IssueID        int64           `json:"issue_id,string" binding:"required"`
	AssignedBy     int64           `json:"assigned_by,string" binding:"required"`
	AssignedTo     int64           `json:"assigned_to,string" binding:"required"`
	RoleOfAssignee model.StaffRole `json:"role_of_assignee" binding:"required,oneof=worker coordinator supervisor"`
	Deadline       time.Time       `json:"deadline" binding:"required"`
}

func (r AssignTaskRequest) ToParams() service.AssignTaskParams {
	return service.AssignTaskParams{
		IssueID:        r.IssueID,
		AssignedBy:     r.AssignedBy,
		AssignedTo:     r.AssignedTo,
		RoleOfAssignee: r.RoleOfAssignee,
		Deadline:       r.Deadline,
	}
}

type SubmitUpdateRequest struct {
	AuthorID int64  `json:"author_id,string" binding:"required"`
	Body     string `json:"body" binding:"required,min=1,max=4096"`
}

type SubmitProofRequest struct {
	AuthorID int64    `json:"author_id,string" binding:"required"`
	Text     string   `json:"text" binding:"max=4096"`
	Images   []string `json:"images" binding:"omitempty,dive,url,max=2048"`
}

type ReviewRequest struct {
	ReviewerID int64  `json:"reviewer_id,string" binding:"required"`
	Approve    *bool  `json:"approve" binding:"required"`
	Comment    string `json:"comment" binding:"max=4096"`
}

type ReassignRequest struct {
	SupervisorID  int64 `json:"supervisor_id,string" binding:"required"`
	CoordinatorID int64 `json:"coordinator_id,string" binding:"required"`
}

type CompleteRequest struct {
	SupervisorID int64    `json:"supervisor_id,string" binding:"required"`
	Text         string   `json:"text" binding:"max=4096"`
	Images       []string `json:"images" binding:"omitempty,dive,url,max=2048"`
}

type TaskResponse struct {
	ID             int64              `json:"id,string"`
	IssueID        int64              `json:"issue_id,string"`
	AssignedBy     int64              `json:"assigned_by,string"`
	AssignedTo     int64              `json:"assigned_to,string"`
	RoleOfAssignee model.StaffRole    `json:"role_of_assignee"`
	Status         model.TaskStatus   `json:"status"`
	Deadline       time.Time          `json:"deadline"`
	Updates        []model.TaskUpdate `json:"updates,omitempty"`
	ProofText      string             `json:"proof_text,omitempty"`
	ProofImages    []string           `json:"proof_images,omitempty"`
	ProofSubmitted bool               `json:"proof_submitted"`
	HasEscalated   bool               `json:"has_escalated"`
	EscalatedFrom  *int64             `json:"escalated_from,omitempty,string"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func ToTaskResponse(t *model.Task) *TaskResponse {
	return &TaskResponse{
		ID:             t.ID,
		IssueID:        t.IssueID,
		AssignedBy:     t.AssignedBy,
		AssignedTo:     t.AssignedTo,
		RoleOfAssignee: t.RoleOfAssignee,
		Status:         t.Status,
		Deadline:       t.Deadline,
		Updates:        t.Updates,
		ProofText:      t.ProofText,
		ProofImages:    t.ProofImages,
		ProofSubmitted: t.ProofSubmitted,
		HasEscalated:   t.HasEscalated,
		EscalatedFrom:  t.EscalatedFrom,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
