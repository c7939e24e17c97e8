package worker

import (
	"fmt"
	"html"

	"civicgrid.app/core/internal/model"
)

// buildEmail renders the subject and HTML body for one job type. Payload
// strings are user-supplied and escaped before templating.
func buildEmail(jobType model.JobType, p model.EmailPayload) (subject, body string, err error) {
	title := html.EscapeString(p.IssueTitle)
	detail := html.EscapeString(p.Detail)

	switch jobType {
	case model.JobTypeAssignmentEmail:
		subject = fmt.Sprintf("New task assigned: %s", p.IssueTitle)
		body = fmt.Sprintf("<p>You have been assigned a task on <b>%s</b>.</p><p>%s</p>", title, detail)
	case model.JobTypeEscalationEmail:
		subject = fmt.Sprintf("Task escalated to you: %s", p.IssueTitle)
		body = fmt.Sprintf("<p>An overdue task on <b>%s</b> has been escalated to you.</p><p>%s</p>", title, detail)
	case model.JobTypeReminderEmail:
		subject = fmt.Sprintf("Deadline approaching: %s", p.IssueTitle)
		body = fmt.Sprintf("<p>Your task on <b>%s</b> is due soon.</p><p>%s</p>", title, detail)
	case model.JobTypeCompletionEmail:
		subject = fmt.Sprintf("Task completed: %s", p.IssueTitle)
		body = fmt.Sprintf("<p>Your task on <b>%s</b> was approved and marked completed.</p><p>%s</p>", title, detail)
	case model.JobTypeResolutionEmail:
		subject = fmt.Sprintf("Issue resolved: %s", p.IssueTitle)
		body = fmt.Sprintf("<p>Your reported issue <b>%s</b> has been resolved.</p><p>%s</p>", title, detail)
	case model.JobTypeRejectionEmail:
		subject = fmt.Sprintf("Task submission rejected: %s", p.IssueTitle)
		body = fmt.Sprintf("<p>Your submission on <b>%s</b> was rejected and needs rework.</p><p>%s</p>", title, detail)
	default:
		return "", "", fmt.Errorf("unknown job type %q", jobType)
	}
	return subject, body, nil
}
