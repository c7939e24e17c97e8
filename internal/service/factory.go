package service

import (
	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/push"
	"civicgrid.app/core/internal/store"
)

// Services bundles every service over one store set, wired once at startup.
type Services struct {
	Issues     IssueService
	Tasks      TaskService
	Recommend  Recommender
	Notifier   Notifier
	Timeline   TimelineRecorder
	Escalation EscalationSweep
	Priority   PrioritySweep
	Reopen     ReopenSweep
}

// New wires the full service graph over the database and push publisher.
func New(database *db.DB, publisher push.Publisher) *Services {
	stores := store.NewStores(database.Querier())
	return NewWithStores(stores, NewTxRunner(database), publisher)
}

// NewWithStores wires services over explicit stores and transaction runner.
func NewWithStores(stores StoreProvider, txRunner TxRunner, publisher push.Publisher) *Services {
	recorder := NewTimelineRecorder(stores.Issues(), stores.Users(), stores.Timeline())
	notifier := NewNotifier(stores.Users(), stores.Notifications(), stores.Jobs(), publisher)

	return &Services{
		Issues:     NewIssueService(stores.Issues(), stores.Reports(), notifier, recorder),
		Tasks:      NewTaskService(stores.Issues(), stores.Tasks(), stores.Users(), notifier, recorder, txRunner),
		Recommend:  NewRecommender(stores.Issues(), stores.Tasks(), stores.Users()),
		Notifier:   notifier,
		Timeline:   recorder,
		Escalation: NewEscalationSweep(stores.Issues(), stores.Tasks(), stores.Users(), notifier, recorder),
		Priority:   NewPrioritySweep(stores.Issues(), recorder),
		Reopen:     NewReopenSweep(stores.Issues(), stores.Tasks(), recorder),
	}
}
