package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/dto"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/service"
	"civicgrid.app/core/internal/store"
)

type IssueHandler struct {
	issues    service.IssueService
	recommend service.Recommender
	timeline  store.TimelineStore
	reports   store.ReportStore
}

func NewIssueHandler(issues service.IssueService, recommend service.Recommender,
	timeline store.TimelineStore, reports store.ReportStore,
) *IssueHandler {
	return &IssueHandler{issues: issues, recommend: recommend, timeline: timeline, reports: reports}
}

func (h *IssueHandler) TakeUp(c *gin.Context) {
	ctx := c.Request.Context()

	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.TakeUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.issues.TakeUp(ctx, issueID, req.AdminID, req.Deadline)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToIssueResponse(issue))
}

func (h *IssueHandler) AssignStaff(c *gin.Context) {
	ctx := c.Request.Context()

	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.issues.AssignStaff(ctx, issueID, req.ActorID, model.AssignedStaff{
		Role:   req.Role,
		UserID: req.UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToIssueResponse(issue))
}

func (h *IssueHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.issues.Resolve(ctx, service.ResolveParams{
		IssueID:      issueID,
		SupervisorID: req.SupervisorID,
		Summary:      req.Summary,
		Images:       req.Images,
		Performance:  req.PerformanceRecords(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToIssueResponse(issue))
}

func (h *IssueHandler) Recommendations(c *gin.Context) {
	ctx := c.Request.Context()

	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	recs, err := h.recommend.Recommend(ctx, issueID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *IssueHandler) Timeline(c *gin.Context) {
	ctx := c.Request.Context()

	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	events, err := h.timeline.ListByIssue(ctx, issueID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *IssueHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()

	issueID, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.reports.GetByIssue(ctx, issueID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
