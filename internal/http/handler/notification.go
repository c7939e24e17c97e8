package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civicgrid.app/core/internal/http/dto"
	"civicgrid.app/core/internal/store"
)

const defaultNotificationLimit = 50

type NotificationHandler struct {
	notifications store.NotificationStore
}

func NewNotificationHandler(notifications store.NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}

	limit := int64(defaultNotificationLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	list, err := h.notifications.ListByUser(ctx, userID, int32(limit))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": dto.ToNotificationResponses(list)})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
