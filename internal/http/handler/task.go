package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/dto"
	"civicgrid.app/core/internal/service"
)

type TaskHandler struct {
	tasks service.TaskService
}

func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Assign(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Assign(ctx, req.ToParams())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

func (h *TaskHandler) SubmitUpdate(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.SubmitUpdate(ctx, taskID, req.AuthorID, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

func (h *TaskHandler) SubmitProof(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.SubmitProof(ctx, taskID, req.AuthorID, req.Text, req.Images)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

func (h *TaskHandler) Review(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Review(ctx, taskID, req.ReviewerID, *req.Approve, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

func (h *TaskHandler) Reassign(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.ReassignToCoordinator(ctx, taskID, req.SupervisorID, req.CoordinatorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

func (h *TaskHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.CompleteBySupervisor(ctx, taskID, req.SupervisorID, req.Text, req.Images)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}
