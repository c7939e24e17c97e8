package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where business
// context (issue_id, task_id, etc.) is automatically included in all log statements.
type LogFields struct {
	IssueID   *int64  // Issue being operated on
	TaskID    *int64  // Task being operated on
	JobID     *int64  // Queue job being processed
	UserID    *int64  // Acting or affected user
	Sweep     *string // Sweep name (e.g. "escalation", "priority", "reopen")
	Component string  // Component name (OTel semantic convention style, e.g. "civicgrid.worker")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.IssueID != nil {
		result.IssueID = next.IssueID
	}
	if next.TaskID != nil {
		result.TaskID = next.TaskID
	}
	if next.JobID != nil {
		result.JobID = next.JobID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.Sweep != nil {
		result.Sweep = next.Sweep
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{IssueID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
