package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers best-effort real-time events to a user's channel.
// No delivery guarantee is assumed by callers.
type Publisher interface {
	Publish(ctx context.Context, userID int64, event Event)
}

// Event is the payload pushed to a user's real-time channel.
type Event struct {
	Kind    string         `json:"kind"`
	Title   string         `json:"title"`
	Body    string         `json:"body,omitempty"`
	IssueID int64          `json:"issue_id,omitempty"`
	TaskID  *int64         `json:"task_id,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

type redisPublisher struct {
	client        *redis.Client
	channelPrefix string
}

// NewRedisPublisher publishes events over Redis pub/sub, one channel per
// user.
func NewRedisPublisher(client *redis.Client, channelPrefix string) Publisher {
	return &redisPublisher{client: client, channelPrefix: channelPrefix}
}

func (p *redisPublisher) Publish(ctx context.Context, userID int64, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal push event", "error", err, "user_id", userID)
		return
	}

	channel := fmt.Sprintf("%s:user-%d", p.channelPrefix, userID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		// Fire-and-forget: a lost push is acceptable, the notification
		// record is the durable copy.
		slog.WarnContext(ctx, "failed to publish push event",
			"error", err,
			"channel", channel,
			"user_id", userID)
	}
}

// Noop is a Publisher that drops every event. Used where real-time push is
// not configured.
type Noop struct{}

func (Noop) Publish(context.Context, int64, Event) {}
