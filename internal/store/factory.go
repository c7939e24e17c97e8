package store

import (
	"civicgrid.app/core/core/db"
)

type Stores struct {
	q db.Querier
}

// NewStores binds all stores to a Querier, which is either the pool or a
// transaction.
func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Issues() IssueStore {
	return &issueStore{q: s.q}
}

func (s *Stores) Tasks() TaskStore {
	return &taskStore{q: s.q}
}

func (s *Stores) Users() UserStore {
	return &userStore{q: s.q}
}

func (s *Stores) Jobs() JobStore {
	return &jobStore{q: s.q}
}

func (s *Stores) Notifications() NotificationStore {
	return &notificationStore{q: s.q}
}

func (s *Stores) Timeline() TimelineStore {
	return &timelineStore{q: s.q}
}

func (s *Stores) Reports() ReportStore {
	return &reportStore{q: s.q}
}
