package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/service"
)

// AdminHandler triggers the sweeps on demand, outside their periodic
// cadence. Escalation supports dry-run for verification before enabling
// live escalation.
type AdminHandler struct {
	escalation service.EscalationSweep
	priority   service.PrioritySweep
	reopen     service.ReopenSweep
}

func NewAdminHandler(escalation service.EscalationSweep, priority service.PrioritySweep, reopen service.ReopenSweep) *AdminHandler {
	return &AdminHandler{escalation: escalation, priority: priority, reopen: reopen}
}

func (h *AdminHandler) RunEscalation(c *gin.Context) {
	dryRun := c.Query("dry_run") == "1" || c.Query("dry_run") == "true"

	summary, err := h.escalation.Run(c.Request.Context(), dryRun)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) RunPriority(c *gin.Context) {
	summary, err := h.priority.Run(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) RunReopen(c *gin.Context) {
	summary, err := h.reopen.Run(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
