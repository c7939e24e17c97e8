package service

import (
	"context"

	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/store"
)

// StoreProvider exposes the stores needed by a transactional operation.
type StoreProvider interface {
	Issues() store.IssueStore
	Tasks() store.TaskStore
	Users() store.UserStore
	Jobs() store.JobStore
	Notifications() store.NotificationStore
	Timeline() store.TimelineStore
	Reports() store.ReportStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q db.Querier) error {
		return fn(store.NewStores(q))
	})
}
