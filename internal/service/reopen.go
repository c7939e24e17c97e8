package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

// ReopenSweep detects issues whose resolution deadline lapsed without
// resolution, discards their tasks, terminally marks them not-resolved and
// republishes a fresh clone. The original record is never mutated back to
// open; the clone carries a " Reopend-N" title suffix with a strictly
// increasing counter per base title.
type ReopenSweep interface {
	Run(ctx context.Context) (*ReopenSummary, error)
}

type ReopenSummary struct {
	Scanned  int          `json:"scanned"`
	Reopened []model.Issue `json:"reopened"`
	Errors   []SweepError `json:"errors,omitempty"`
}

// reopenSuffix matches the generated title suffix. The original misspelling
// is load-bearing: existing titles in the wild carry it, so the counter
// scan and the generator must agree on it.
var reopenSuffix = regexp.MustCompile(`(?i)^(.*) reopend-(\d+)$`)

type reopenSweep struct {
	issues   store.IssueStore
	tasks    store.TaskStore
	recorder TimelineRecorder
}

func NewReopenSweep(issues store.IssueStore, tasks store.TaskStore, recorder TimelineRecorder) ReopenSweep {
	return &reopenSweep{issues: issues, tasks: tasks, recorder: recorder}
}

func (s *reopenSweep) Run(ctx context.Context) (*ReopenSummary, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Sweep: logger.Ptr("reopen")})

	expired, err := s.issues.ListExpiredUnresolved(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("listing expired issues: %w", err)
	}

	summary := &ReopenSummary{}
	for i := range expired {
		issue := &expired[i]
		summary.Scanned++

		clone, err := s.reopen(ctx, issue)
		if err != nil {
			summary.Errors = append(summary.Errors, SweepError{
				IssueID: issue.ID,
				Message: err.Error(),
			})
			slog.WarnContext(ctx, "issue reopen failed", "error", err, "issue_id", issue.ID)
			continue
		}
		summary.Reopened = append(summary.Reopened, *clone)
	}

	slog.InfoContext(ctx, "reopen sweep finished",
		"scanned", summary.Scanned, "reopened", len(summary.Reopened), "errors", len(summary.Errors))
	return summary, nil
}

func (s *reopenSweep) reopen(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	if err := s.tasks.DeleteByIssue(ctx, issue.ID); err != nil {
		return nil, fmt.Errorf("deleting tasks: %w", err)
	}

	issue.Status = model.IssueStatusNotResolved
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("marking not resolved: %w", err)
	}

	title, err := s.nextReopenTitle(ctx, issue.Title)
	if err != nil {
		return nil, err
	}

	clone := &model.Issue{
		ID:          id.New(),
		Title:       title,
		Description: issue.Description,
		Category:    issue.Category,
		Priority:    issue.Priority,
		Status:      model.IssueStatusOpen,
		Location:    issue.Location,
		ReporterID:  issue.ReporterID,
	}
	if err := s.issues.Create(ctx, clone); err != nil {
		return nil, fmt.Errorf("creating reopened issue: %w", err)
	}

	s.record(ctx, issue.ID, TimelineEntry{
		Type:        model.TimelineIssueReopened,
		Title:       "Issue expired unresolved",
		Description: fmt.Sprintf("republished as %q", clone.Title),
		Metadata:    map[string]any{"reopened_as": clone.ID},
	})
	s.record(ctx, clone.ID, TimelineEntry{
		Type:        model.TimelineIssueReported,
		Title:       "Issue reopened",
		Description: fmt.Sprintf("republished from expired issue %d", issue.ID),
		ActorID:     issue.ReporterID,
		Metadata:    map[string]any{"reopened_from": issue.ID},
	})

	return clone, nil
}

// nextReopenTitle derives the clone's title. The base is the title with any
// existing reopen suffix stripped; the counter is one more than the number
// of issues already carrying the base plus a reopen suffix, case
// insensitively, so the counter keeps climbing across reopen cycles.
func (s *reopenSweep) nextReopenTitle(ctx context.Context, title string) (string, error) {
	base := title
	if m := reopenSuffix.FindStringSubmatch(title); m != nil {
		base = m[1]
	}

	titles, err := s.issues.ListTitles(ctx, base+" Reopend-%")
	if err != nil {
		return "", fmt.Errorf("counting reopened titles: %w", err)
	}

	exact := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(base) + ` reopend-\d+$`)
	count := 0
	for _, t := range titles {
		if exact.MatchString(t) {
			count++
		}
	}

	return fmt.Sprintf("%s Reopend-%d", base, count+1), nil
}

func (s *reopenSweep) record(ctx context.Context, issueID int64, entry TimelineEntry) {
	if _, err := s.recorder.Record(ctx, issueID, entry); err != nil {
		slog.WarnContext(ctx, "failed to record reopen timeline event",
			"error", err, "issue_id", issueID)
	}
}
