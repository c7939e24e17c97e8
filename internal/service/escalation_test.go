package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/service"
	"civicgrid.app/core/internal/store"
)

var _ = Describe("EscalationSweep", func() {
	var (
		sweep    service.EscalationSweep
		issues   *mockIssueStore
		tasks    *mockTaskStore
		users    *mockUserStore
		notifier *mockNotifier
		recorder *mockRecorder
		ctx      context.Context

		supervisorID  int64
		coordinatorID int64
		workerID      int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		issues = &mockIssueStore{}
		tasks = &mockTaskStore{}
		users = &mockUserStore{}
		notifier = &mockNotifier{}
		recorder = &mockRecorder{}

		supervisorID = 30
		coordinatorID = 20
		workerID = 10

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		issues.getByIDFn = func(_ context.Context, issueID int64) (*model.Issue, error) {
			return &model.Issue{
				ID:    issueID,
				Title: "Burst water main",
				AssignedStaff: []model.AssignedStaff{
					{Role: model.StaffRoleSupervisor, UserID: supervisorID},
					{Role: model.StaffRoleCoordinator, UserID: coordinatorID},
				},
			}, nil
		}

		sweep = service.NewEscalationSweep(issues, tasks, users, notifier, recorder)
	})

	overdueWorkerTask := func() model.Task {
		return model.Task{
			ID:             100,
			IssueID:        1,
			AssignedBy:     coordinatorID,
			AssignedTo:     workerID,
			RoleOfAssignee: model.StaffRoleWorker,
			Status:         model.TaskStatusPending,
			Deadline:       time.Now().Add(-24 * time.Hour),
		}
	}

	It("escalates an overdue worker task to the assigning coordinator", func() {
		original := overdueWorkerTask()
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			return []model.Task{original}, nil
		}
		var created *model.Task
		tasks.createFn = func(_ context.Context, t *model.Task) error {
			created = t
			return nil
		}
		var latched *model.Task
		tasks.updateFn = func(_ context.Context, t *model.Task) error {
			latched = t
			return nil
		}

		summary, err := sweep.Run(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(1))
		Expect(summary.Created).To(HaveLen(1))
		Expect(summary.Errors).To(BeEmpty())

		Expect(created).NotTo(BeNil())
		Expect(created.AssignedTo).To(Equal(coordinatorID))
		Expect(created.AssignedBy).To(Equal(supervisorID))
		Expect(created.RoleOfAssignee).To(Equal(model.StaffRoleCoordinator))
		Expect(created.Deadline).To(BeTemporally("~", original.Deadline.Add(48*time.Hour), time.Second))
		Expect(created.EscalatedFrom).To(HaveValue(Equal(original.ID)))

		Expect(latched).NotTo(BeNil())
		Expect(latched.ID).To(Equal(original.ID))
		Expect(latched.HasEscalated).To(BeTrue())

		kinds := []model.NotificationKind{notifier.events[0].Kind, notifier.events[1].Kind}
		Expect(kinds).To(ConsistOf(model.NotificationEscalation, model.NotificationAssignment))
		Expect(recorder.entries).To(HaveLen(1))
		Expect(recorder.entries[0].Type).To(Equal(model.TimelineTaskEscalated))
	})

	It("escalates an overdue coordinator task to the supervisor", func() {
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			return []model.Task{{
				ID:             101,
				IssueID:        1,
				AssignedBy:     supervisorID,
				AssignedTo:     coordinatorID,
				RoleOfAssignee: model.StaffRoleCoordinator,
				Deadline:       time.Now().Add(-time.Hour),
			}}, nil
		}
		var created *model.Task
		tasks.createFn = func(_ context.Context, t *model.Task) error {
			created = t
			return nil
		}

		summary, err := sweep.Run(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Created).To(HaveLen(1))
		Expect(created.AssignedTo).To(Equal(supervisorID))
		Expect(created.AssignedBy).To(Equal(supervisorID))
		Expect(created.RoleOfAssignee).To(Equal(model.StaffRoleSupervisor))
	})

	It("leaves an overdue supervisor task alone", func() {
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			return []model.Task{{
				ID:             102,
				IssueID:        1,
				AssignedTo:     supervisorID,
				RoleOfAssignee: model.StaffRoleSupervisor,
				Deadline:       time.Now().Add(-time.Hour),
			}}, nil
		}

		summary, err := sweep.Run(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Created).To(BeEmpty())
		Expect(summary.SkippedTopOfLadder).To(Equal(1))
		Expect(tasks.createCalls).To(BeZero())
	})

	It("skips tasks on issues with no supervisor", func() {
		issues.getByIDFn = func(_ context.Context, issueID int64) (*model.Issue, error) {
			return &model.Issue{ID: issueID, Title: "Orphaned issue"}, nil
		}
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			return []model.Task{overdueWorkerTask()}, nil
		}

		summary, err := sweep.Run(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.SkippedNoSupervisor).To(Equal(1))
		Expect(tasks.createCalls).To(BeZero())
	})

	It("skips a worker task whose assigning coordinator is gone", func() {
		users.getByIDFn = func(_ context.Context, _ int64) (*model.User, error) {
			return nil, store.ErrNotFound
		}
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			return []model.Task{overdueWorkerTask()}, nil
		}

		summary, err := sweep.Run(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.SkippedNoAssignor).To(Equal(1))
		Expect(tasks.createCalls).To(BeZero())
	})

	It("records missing issues as per-task errors without aborting", func() {
		issues.getByIDFn = func(_ context.Context, _ int64) (*model.Issue, error) {
			return nil, store.ErrNotFound
		}
		broken := overdueWorkerTask()
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			return []model.Task{broken, broken}, nil
		}

		summary, err := sweep.Run(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(2))
		Expect(summary.Errors).To(HaveLen(2))
		Expect(summary.Errors[0].TaskID).To(Equal(broken.ID))
	})

	It("is idempotent: a second run over latched tasks does nothing", func() {
		pending := []model.Task{overdueWorkerTask()}
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			// The store filters on the latch, so a latched task never comes
			// back in a later run.
			out := make([]model.Task, 0, len(pending))
			for _, t := range pending {
				if !t.HasEscalated {
					out = append(out, t)
				}
			}
			return out, nil
		}
		tasks.updateFn = func(_ context.Context, t *model.Task) error {
			for i := range pending {
				if pending[i].ID == t.ID {
					pending[i] = *t
				}
			}
			return nil
		}

		first, err := sweep.Run(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Created).To(HaveLen(1))

		second, err := sweep.Run(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Processed).To(BeZero())
		Expect(second.Created).To(BeEmpty())
		Expect(tasks.createCalls).To(Equal(1))
	})

	It("dry run reports intended actions without mutating or notifying", func() {
		tasks.listOverdueUnescalatedFn = func(_ context.Context, _ time.Time) ([]model.Task, error) {
			return []model.Task{overdueWorkerTask()}, nil
		}

		summary, err := sweep.Run(ctx, true)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.DryRun).To(BeTrue())
		Expect(summary.Created).To(HaveLen(1))
		Expect(summary.Created[0].RoleOfAssignee).To(Equal(model.StaffRoleCoordinator))
		Expect(tasks.createCalls).To(BeZero())
		Expect(notifier.events).To(BeEmpty())
		Expect(recorder.entries).To(BeEmpty())
	})
})
