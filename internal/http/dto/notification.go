package dto

import (
	"time"

	"civicgrid.app/core/internal/model"
)

type NotificationResponse struct {
	ID        int64                  `json:"id,string"`
	Kind      model.NotificationKind `json:"kind"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

func ToNotificationResponses(list []model.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
