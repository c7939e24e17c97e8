package service_test

import (
	"context"
	"time"

	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/service"
	"civicgrid.app/core/internal/store"
)

type mockIssueStore struct {
	getByIDFn               func(ctx context.Context, id int64) (*model.Issue, error)
	createFn                func(ctx context.Context, issue *model.Issue) error
	updateFn                func(ctx context.Context, issue *model.Issue) error
	listByCategoryFn        func(ctx context.Context, category model.Category) ([]model.Issue, error)
	listOpenUntakenFn       func(ctx context.Context) ([]model.Issue, error)
	listExpiredUnresolvedFn func(ctx context.Context, now time.Time) ([]model.Issue, error)
	listTitlesFn            func(ctx context.Context, pattern string) ([]string, error)
	createCalls             int
	updateCalls             int
}

func (m *mockIssueStore) GetByID(ctx context.Context, id int64) (*model.Issue, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockIssueStore) Create(ctx context.Context, issue *model.Issue) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, issue)
	}
	return nil
}

func (m *mockIssueStore) Update(ctx context.Context, issue *model.Issue) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, issue)
	}
	return nil
}

func (m *mockIssueStore) ListByCategory(ctx context.Context, category model.Category) ([]model.Issue, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, category)
	}
	return nil, nil
}

func (m *mockIssueStore) ListOpenUntaken(ctx context.Context) ([]model.Issue, error) {
	if m.listOpenUntakenFn != nil {
		return m.listOpenUntakenFn(ctx)
	}
	return nil, nil
}

func (m *mockIssueStore) ListExpiredUnresolved(ctx context.Context, now time.Time) ([]model.Issue, error) {
	if m.listExpiredUnresolvedFn != nil {
		return m.listExpiredUnresolvedFn(ctx, now)
	}
	return nil, nil
}

func (m *mockIssueStore) ListTitles(ctx context.Context, pattern string) ([]string, error) {
	if m.listTitlesFn != nil {
		return m.listTitlesFn(ctx, pattern)
	}
	return nil, nil
}

type mockTaskStore struct {
	getByIDFn                func(ctx context.Context, id int64) (*model.Task, error)
	createFn                 func(ctx context.Context, task *model.Task) error
	updateFn                 func(ctx context.Context, task *model.Task) error
	deleteFn                 func(ctx context.Context, id int64) error
	deleteByIssueFn          func(ctx context.Context, issueID int64) error
	listOverdueUnescalatedFn func(ctx context.Context, now time.Time) ([]model.Task, error)
	countByAssigneeFn        func(ctx context.Context, userID int64) (int, int, error)
	createCalls              int
	deleteCalls              int
}

func (m *mockTaskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockTaskStore) Create(ctx context.Context, task *model.Task) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Update(ctx context.Context, task *model.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTaskStore) DeleteByIssue(ctx context.Context, issueID int64) error {
	if m.deleteByIssueFn != nil {
		return m.deleteByIssueFn(ctx, issueID)
	}
	return nil
}

func (m *mockTaskStore) ListOverdueUnescalated(ctx context.Context, now time.Time) ([]model.Task, error) {
	if m.listOverdueUnescalatedFn != nil {
		return m.listOverdueUnescalatedFn(ctx, now)
	}
	return nil, nil
}

func (m *mockTaskStore) CountByAssignee(ctx context.Context, userID int64) (int, int, error) {
	if m.countByAssigneeFn != nil {
		return m.countByAssigneeFn(ctx, userID)
	}
	return 0, 0, nil
}

type mockUserStore struct {
	getByIDFn         func(ctx context.Context, id int64) (*model.User, error)
	listByExpertiseFn func(ctx context.Context, category model.Category) ([]model.User, error)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.User{ID: id, Role: model.UserRoleStaff}, nil
}

func (m *mockUserStore) ListByExpertise(ctx context.Context, category model.Category) ([]model.User, error) {
	if m.listByExpertiseFn != nil {
		return m.listByExpertiseFn(ctx, category)
	}
	return nil, nil
}

type mockJobStore struct {
	enqueueFn        func(ctx context.Context, job *model.Job) error
	getByIDFn        func(ctx context.Context, id int64) (*model.Job, error)
	claimFn          func(ctx context.Context) (*model.Job, bool, error)
	markCompletedFn  func(ctx context.Context, id int64) error
	markFailedFn     func(ctx context.Context, id int64, errMsg string) error
	resetStuckFn     func(ctx context.Context, cutoff time.Time) (int64, error)
	retryFailedFn    func(ctx context.Context, maxAttempts int) (int64, error)
	enqueueCalls     int
}

func (m *mockJobStore) Enqueue(ctx context.Context, job *model.Job) error {
	m.enqueueCalls++
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, job)
	}
	return nil
}

func (m *mockJobStore) GetByID(ctx context.Context, id int64) (*model.Job, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockJobStore) ClaimNextPending(ctx context.Context) (*model.Job, bool, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx)
	}
	return nil, false, nil
}

func (m *mockJobStore) MarkCompleted(ctx context.Context, id int64) error {
	if m.markCompletedFn != nil {
		return m.markCompletedFn(ctx, id)
	}
	return nil
}

func (m *mockJobStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, id, errMsg)
	}
	return nil
}

func (m *mockJobStore) ResetStuck(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.resetStuckFn != nil {
		return m.resetStuckFn(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockJobStore) RetryFailed(ctx context.Context, maxAttempts int) (int64, error) {
	if m.retryFailedFn != nil {
		return m.retryFailedFn(ctx, maxAttempts)
	}
	return 0, nil
}

type mockNotificationStore struct {
	createFn    func(ctx context.Context, n *model.Notification) error
	createCalls int
}

func (m *mockNotificationStore) Create(ctx context.Context, n *model.Notification) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	return nil
}

func (m *mockNotificationStore) ListByUser(context.Context, int64, int32) ([]model.Notification, error) {
	return nil, nil
}

func (m *mockNotificationStore) MarkRead(context.Context, int64, int64) error {
	return nil
}

type mockTimelineStore struct {
	appendFn    func(ctx context.Context, event *model.TimelineEvent) error
	appendCalls int
}

func (m *mockTimelineStore) Append(ctx context.Context, event *model.TimelineEvent) error {
	m.appendCalls++
	if m.appendFn != nil {
		return m.appendFn(ctx, event)
	}
	return nil
}

func (m *mockTimelineStore) ListByIssue(context.Context, int64) ([]model.TimelineEvent, error) {
	return nil, nil
}

type mockReportStore struct {
	createFn func(ctx context.Context, report *model.ResolutionReport) error
}

func (m *mockReportStore) Create(ctx context.Context, report *model.ResolutionReport) error {
	if m.createFn != nil {
		return m.createFn(ctx, report)
	}
	return nil
}

func (m *mockReportStore) GetByIssue(context.Context, int64) (*model.ResolutionReport, error) {
	return nil, store.ErrNotFound
}

// mockStoreProvider hands the same mocks out inside and outside
// transactions.
type mockStoreProvider struct {
	issues        *mockIssueStore
	tasks         *mockTaskStore
	users         *mockUserStore
	jobs          *mockJobStore
	notifications *mockNotificationStore
	timeline      *mockTimelineStore
	reports       *mockReportStore
}

func newMockStoreProvider() *mockStoreProvider {
	return &mockStoreProvider{
		issues:        &mockIssueStore{},
		tasks:         &mockTaskStore{},
		users:         &mockUserStore{},
		jobs:          &mockJobStore{},
		notifications: &mockNotificationStore{},
		timeline:      &mockTimelineStore{},
		reports:       &mockReportStore{},
	}
}

func (p *mockStoreProvider) Issues() store.IssueStore                 { return p.issues }
func (p *mockStoreProvider) Tasks() store.TaskStore                   { return p.tasks }
func (p *mockStoreProvider) Users() store.UserStore                   { return p.users }
func (p *mockStoreProvider) Jobs() store.JobStore                     { return p.jobs }
func (p *mockStoreProvider) Notifications() store.NotificationStore   { return p.notifications }
func (p *mockStoreProvider) Timeline() store.TimelineStore            { return p.timeline }
func (p *mockStoreProvider) Reports() store.ReportStore               { return p.reports }

// mockTxRunner runs the function against the provider directly; "rollback"
// means the callee's writes before the failure are visible, so tests
// assert on call ordering instead.
type mockTxRunner struct {
	provider *mockStoreProvider
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	return fn(m.provider)
}

type mockNotifier struct {
	notifyFn func(ctx context.Context, event service.Event) error
	events   []service.Event
}

func (m *mockNotifier) Notify(ctx context.Context, event service.Event) error {
	m.events = append(m.events, event)
	if m.notifyFn != nil {
		return m.notifyFn(ctx, event)
	}
	return nil
}

type mockRecorder struct {
	recordFn func(ctx context.Context, issueID int64, entry service.TimelineEntry) (*model.TimelineEvent, error)
	entries  []service.TimelineEntry
}

func (m *mockRecorder) Record(ctx context.Context, issueID int64, entry service.TimelineEntry) (*model.TimelineEvent, error) {
	m.entries = append(m.entries, entry)
	if m.recordFn != nil {
		return m.recordFn(ctx, issueID, entry)
	}
	return &model.TimelineEvent{IssueID: issueID, Type: entry.Type}, nil
}
