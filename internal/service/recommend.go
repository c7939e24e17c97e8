package service

import (
	"context"
	"fmt"
	"sort"

	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/store"
)

const maxRecommendations = 5

// Recommender ranks candidate staff for an issue's category and proposes a
// role for each. Read-only: a heuristic the caller may accept, edit or
// ignore, never a mutation.
type Recommender interface {
	Recommend(ctx context.Context, issueID int64) ([]Recommendation, error)
}

// Recommendation is one ranked candidate with the scoring inputs exposed
// for the caller's benefit.
type Recommendation struct {
	UserID         int64           `json:"user_id"`
	Name           string          `json:"name"`
	SuggestedRole  model.StaffRole `json:"suggested_role"`
	Score          float64         `json:"score"`
	SolvedRate     float64         `json:"solved_rate"`
	CompletionRate float64         `json:"completion_rate"`
	Participation  float64         `json:"participation"`
	HasExpertise   bool            `json:"has_expertise"`
	AssignedCount  int             `json:"assigned_count"`
}

type recommender struct {
	issues store.IssueStore
	tasks  store.TaskStore
	users  store.UserStore
}

func NewRecommender(issues store.IssueStore, tasks store.TaskStore, users store.UserStore) Recommender {
	return &recommender{issues: issues, tasks: tasks, users: users}
}

func (r *recommender) Recommend(ctx context.Context, issueID int64) ([]Recommendation, error) {
	issue, err := r.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("loading issue %d: %w", issueID, err)
	}

	// Per-user history across every issue in the category.
	history, err := r.issues.ListByCategory(ctx, issue.Category)
	if err != nil {
		return nil, fmt.Errorf("listing %s issues: %w", issue.Category, err)
	}
	assigned := map[int64]int{}
	resolved := map[int64]int{}
	for i := range history {
		for _, staff := range history[i].AssignedStaff {
			assigned[staff.UserID]++
		}
		if history[i].ResolvedBy != nil {
			resolved[*history[i].ResolvedBy]++
		}
	}

	experts, err := r.users.ListByExpertise(ctx, issue.Category)
	if err != nil {
		return nil, fmt.Errorf("listing %s experts: %w", issue.Category, err)
	}
	expertise := map[int64]bool{}
	for _, u := range experts {
		expertise[u.ID] = true
	}

	// Pool: category contributors plus declared experts, minus anyone
	// already on this issue.
	pool := map[int64]struct{}{}
	for userID := range assigned {
		pool[userID] = struct{}{}
	}
	for _, u := range experts {
		pool[u.ID] = struct{}{}
	}
	for _, staff := range issue.AssignedStaff {
		delete(pool, staff.UserID)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	maxAssigned := 0
	for userID := range pool {
		if assigned[userID] > maxAssigned {
			maxAssigned = assigned[userID]
		}
	}

	recs := make([]Recommendation, 0, len(pool))
	for userID := range pool {
		user, err := r.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("loading candidate %d: %w", userID, err)
		}

		total, completed, err := r.tasks.CountByAssignee(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("counting tasks for %d: %w", userID, err)
		}

		rec := Recommendation{
			UserID:        userID,
			Name:          user.Name,
			HasExpertise:  expertise[userID],
			AssignedCount: assigned[userID],
		}
		if rec.AssignedCount > 0 {
			rec.SolvedRate = float64(resolved[userID]) / float64(rec.AssignedCount)
		}
		if total > 0 {
			rec.CompletionRate = float64(completed) / float64(total)
		}
		if maxAssigned > 0 {
			rec.Participation = float64(rec.AssignedCount) / float64(maxAssigned)
		}
		rec.Score = 0.50*rec.SolvedRate + 0.25*rec.CompletionRate + 0.15*rec.Participation
		if rec.HasExpertise {
			rec.Score += 0.10
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].SolvedRate != recs[j].SolvedRate {
			return recs[i].SolvedRate > recs[j].SolvedRate
		}
		return recs[i].AssignedCount > recs[j].AssignedCount
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	roles := suggestRoles(len(recs), issue.Supervisor() != nil)
	for i := range recs {
		recs[i].SuggestedRole = roles[i]
	}
	return recs, nil
}

// suggestRoles maps rank to role by pool size. With no existing supervisor
// the top rank is supervisor, the next tier coordinator, the remainder
// workers; when the issue already has a supervisor every rank shifts one
// tier down.
func suggestRoles(n int, hasSupervisor bool) []model.StaffRole {
	if n == 0 {
		return nil
	}

	// Second-tier width grows with the pool: one coordinator slot below
	// rank 0 until the pool reaches five, then two.
	secondTier := 0
	if n >= 2 {
		secondTier = 1
	}
	if n >= 5 {
		secondTier = 2
	}

	roles := make([]model.StaffRole, 0, n)
	if hasSupervisor {
		// No second supervisor; rank 0 drops to the coordinator tier and
		// the former coordinator slots drop to worker.
		roles = append(roles, model.StaffRoleCoordinator)
		if secondTier == 2 {
			roles = append(roles, model.StaffRoleCoordinator)
		}
	} else {
		roles = append(roles, model.StaffRoleSupervisor)
		for i := 0; i < secondTier && len(roles) < n; i++ {
			roles = append(roles, model.StaffRoleCoordinator)
		}
	}
	for len(roles) < n {
		roles = append(roles, model.StaffRoleWorker)
	}
	return roles
}
