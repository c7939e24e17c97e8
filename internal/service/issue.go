package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

// IssueService covers the issue-level lifecycle around the task machinery:
// take-up, staff assignment and resolution. Status only ever moves
// open → in_progress → resolved; the reopen sweep owns the not_resolved path.
type IssueService interface {
	TakeUp(ctx context.Context, issueID, adminID int64, deadline time.Time) (*model.Issue, error)
	AssignStaff(ctx context.Context, issueID, actorID int64, staff model.AssignedStaff) (*model.Issue, error)
	Resolve(ctx context.Context, params ResolveParams) (*model.Issue, error)
}

// ResolveParams carries a supervisor's resolution of an issue. Performance
// records rate the other assigned staff; the resolving supervisor never
// rates themselves.
type ResolveParams struct {
	IssueID      int64
	SupervisorID int64
	Summary      string
	Images       []string
	Performance  []model.PerformanceRecord
}

type issueService struct {
	issues   store.IssueStore
	reports  store.ReportStore
	notifier Notifier
	recorder TimelineRecorder
}

func NewIssueService(issues store.IssueStore, reports store.ReportStore, notifier Notifier, recorder TimelineRecorder) IssueService {
	return &issueService{issues: issues, reports: reports, notifier: notifier, recorder: recorder}
}

// TakeUp marks an open issue as in progress under a municipality admin and
// sets its resolution deadline.
func (s *issueService) TakeUp(ctx context.Context, issueID, adminID int64, deadline time.Time) (*model.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("loading issue %d: %w", issueID, err)
	}
	if issue.Status == model.IssueStatusResolved || issue.Status == model.IssueStatusNotResolved {
		return nil, ErrIssueResolved
	}

	now := time.Now()
	issue.Status = model.IssueStatusInProgress
	issue.TakenUpBy = &adminID
	issue.TakenUpTime = &now
	issue.Deadline = &deadline

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("saving take-up: %w", err)
	}

	s.record(ctx, issue.ID, TimelineEntry{
		Type:    model.TimelineIssueTakenUp,
		Title:   "Issue taken up",
		ActorID: adminID,
	})
	return issue, nil
}

// AssignStaff adds a role+user pair to the issue. At most one supervisor
// per issue, and a user holds at most one role on it.
func (s *issueService) AssignStaff(ctx context.Context, issueID, actorID int64, staff model.AssignedStaff) (*model.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("loading issue %d: %w", issueID, err)
	}
	if issue.Status == model.IssueStatusResolved || issue.Status == model.IssueStatusNotResolved {
		return nil, ErrIssueResolved
	}
	if staff.Role == model.StaffRoleSupervisor && issue.Supervisor() != nil {
		return nil, ErrDuplicateSupervisor
	}
	if issue.HasStaff(staff.UserID) {
		return nil, fmt.Errorf("user %d already assigned to issue %d", staff.UserID, issueID)
	}

	issue.AssignedStaff = append(issue.AssignedStaff, staff)
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("saving staff assignment: %w", err)
	}

	s.record(ctx, issue.ID, TimelineEntry{
		Type:              model.TimelineStaffAssigned,
		Title:             "Staff assigned",
		ActorID:           actorID,
		AssignedStaffID:   &staff.UserID,
		AssignedStaffRole: &staff.Role,
	})
	return issue, nil
}

// Resolve closes an in-progress issue with exactly one resolution report.
// Only the issue's supervisor may resolve.
func (s *issueService) Resolve(ctx context.Context, params ResolveParams) (*model.Issue, error) {
	issue, err := s.issues.GetByID(ctx, params.IssueID)
	if err != nil {
		return nil, fmt.Errorf("loading issue %d: %w", params.IssueID, err)
	}
	if issue.Status == model.IssueStatusResolved || issue.Status == model.IssueStatusNotResolved {
		return nil, ErrIssueResolved
	}
	supervisor := issue.Supervisor()
	if supervisor == nil || supervisor.UserID != params.SupervisorID {
		return nil, ErrNotSupervisor
	}

	performance := make([]model.PerformanceRecord, 0, len(params.Performance))
	for _, record := range params.Performance {
		if record.UserID == params.SupervisorID {
			continue
		}
		performance = append(performance, record)
	}

	report := &model.ResolutionReport{
		ID:           id.New(),
		IssueID:      issue.ID,
		SupervisorID: params.SupervisorID,
		Summary:      params.Summary,
		Images:       params.Images,
		Performance:  performance,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("creating resolution report: %w", err)
	}

	now := time.Now()
	issue.Status = model.IssueStatusResolved
	issue.ResolvedBy = &params.SupervisorID
	issue.ResolvedAt = &now
	issue.ReportID = &report.ID
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, fmt.Errorf("saving resolution: %w", err)
	}

	if err := s.notifier.Notify(ctx, Event{
		Kind:        model.NotificationResolution,
		RecipientID: issue.ReporterID,
		IssueID:     issue.ID,
		IssueTitle:  issue.Title,
		Detail:      params.Summary,
	}); err != nil {
		slog.WarnContext(ctx, "failed to notify reporter of resolution",
			"error", err, "issue_id", issue.ID)
	}

	s.record(ctx, issue.ID, TimelineEntry{
		Type:     model.TimelineIssueResolved,
		Title:    "Issue resolved",
		ActorID:  params.SupervisorID,
		Metadata: map[string]any{"report_id": report.ID},
	})
	return issue, nil
}

func (s *issueService) record(ctx context.Context, issueID int64, entry TimelineEntry) {
	if _, err := s.recorder.Record(ctx, issueID, entry); err != nil {
		slog.WarnContext(ctx, "failed to record issue timeline event",
			"error", err, "issue_id", issueID)
	}
}
