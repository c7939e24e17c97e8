package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/service"
	"civicgrid.app/core/internal/store"
)

// respondServiceError maps core errors onto HTTP statuses. Precondition
// violations are client errors; anything unrecognized is a 500 with the
// detail kept out of the response body.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrTaskCompleted),
		errors.Is(err, service.ErrTaskLocked),
		errors.Is(err, service.ErrProofRequired),
		errors.Is(err, service.ErrDuplicateSupervisor),
		errors.Is(err, service.ErrIssueResolved),
		errors.Is(err, service.ErrNotCoordinator):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotSupervisor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pathID parses an int64 path parameter, responding 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
