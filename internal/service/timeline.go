package service

import (
	"context"
	"errors"
	"fmt"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

// TimelineRecorder appends immutable audit events for issue state changes.
// Pure side-effect sink, no control flow of its own.
type TimelineRecorder interface {
	Record(ctx context.Context, issueID int64, entry TimelineEntry) (*model.TimelineEvent, error)
}

// TimelineEntry describes one event to record. The actor's effective role
// is resolved by the recorder, not supplied by the caller.
type TimelineEntry struct {
	Type        model.TimelineEventType
	Title       string
	Description string
	ActorID     int64

	TaskID            *int64
	AssignedStaffID   *int64
	AssignedStaffRole *model.StaffRole
	Metadata          map[string]any
}

type timelineRecorder struct {
	issues   store.IssueStore
	users    store.UserStore
	timeline store.TimelineStore
}

func NewTimelineRecorder(issues store.IssueStore, users store.UserStore, timeline store.TimelineStore) TimelineRecorder {
	return &timelineRecorder{issues: issues, users: users, timeline: timeline}
}

func (r *timelineRecorder) Record(ctx context.Context, issueID int64, entry TimelineEntry) (*model.TimelineEvent, error) {
	issue, err := r.issues.GetByID(ctx, issueID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading issue for timeline: %w", err)
	}

	var user *model.User
	if entry.ActorID != 0 {
		user, err = r.users.GetByID(ctx, entry.ActorID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("loading actor for timeline: %w", err)
		}
	}

	event := &model.TimelineEvent{
		ID:                id.New(),
		IssueID:           issueID,
		Type:              entry.Type,
		Title:             entry.Title,
		Description:       entry.Description,
		ActorID:           entry.ActorID,
		ActorRole:         ResolveActorRole(issue, user, entry.ActorID),
		TaskID:            entry.TaskID,
		AssignedStaffID:   entry.AssignedStaffID,
		AssignedStaffRole: entry.AssignedStaffRole,
		Metadata:          entry.Metadata,
	}

	if err := r.timeline.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("appending timeline event: %w", err)
	}
	return event, nil
}

// ResolveActorRole computes the actor's effective role at recording time.
// Total over the three lookups, checked in order of specificity: an
// issue-specific staff assignment wins, then the municipality admin role,
// and everyone else is a citizen. Either lookup may have failed (nil).
func ResolveActorRole(issue *model.Issue, user *model.User, actorID int64) model.ActorRole {
	if issue != nil {
		if role, ok := issue.StaffRoleOf(actorID); ok {
			return model.ActorRole(role)
		}
	}
	if user != nil && user.Role == model.UserRoleAdmin {
		return model.ActorRoleMunicipalityAdmin
	}
	return model.ActorRoleCitizen
}
