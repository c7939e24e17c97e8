package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/service"
	"civicgrid.app/core/internal/store"
)

var _ = Describe("TimelineRecorder", func() {
	var (
		recorder service.TimelineRecorder
		issues   *mockIssueStore
		users    *mockUserStore
		timeline *mockTimelineStore
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		issues = &mockIssueStore{}
		users = &mockUserStore{}
		timeline = &mockTimelineStore{}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		recorder = service.NewTimelineRecorder(issues, users, timeline)
	})

	It("appends an event with the actor's resolved role", func() {
		issues.getByIDFn = func(_ context.Context, issueID int64) (*model.Issue, error) {
			return &model.Issue{
				ID: issueID,
				AssignedStaff: []model.AssignedStaff{
					{Role: model.StaffRoleCoordinator, UserID: 20},
				},
			}, nil
		}
		var appended *model.TimelineEvent
		timeline.appendFn = func(_ context.Context, event *model.TimelineEvent) error {
			appended = event
			return nil
		}

		event, err := recorder.Record(ctx, 1, service.TimelineEntry{
			Type:    model.TimelineTaskAssigned,
			Title:   "Task assigned",
			ActorID: 20,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(event.ID).NotTo(BeZero())
		Expect(event.ActorRole).To(Equal(model.ActorRoleCoordinator))
		Expect(appended).To(Equal(event))
	})

	It("tolerates a missing issue and a missing actor", func() {
		issues.getByIDFn = func(_ context.Context, _ int64) (*model.Issue, error) {
			return nil, store.ErrNotFound
		}
		users.getByIDFn = func(_ context.Context, _ int64) (*model.User, error) {
			return nil, store.ErrNotFound
		}

		event, err := recorder.Record(ctx, 1, service.TimelineEntry{
			Type:    model.TimelineIssueReopened,
			ActorID: 99,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(event.ActorRole).To(Equal(model.ActorRoleCitizen))
	})

	DescribeTable("ResolveActorRole",
		func(issue *model.Issue, user *model.User, actorID int64, want model.ActorRole) {
			Expect(service.ResolveActorRole(issue, user, actorID)).To(Equal(want))
		},
		Entry("staff assignment wins over admin record",
			&model.Issue{AssignedStaff: []model.AssignedStaff{{Role: model.StaffRoleSupervisor, UserID: 5}}},
			&model.User{ID: 5, Role: model.UserRoleAdmin},
			int64(5), model.ActorRoleSupervisor),
		Entry("admin without staff assignment",
			&model.Issue{},
			&model.User{ID: 5, Role: model.UserRoleAdmin},
			int64(5), model.ActorRoleMunicipalityAdmin),
		Entry("plain user is a citizen",
			&model.Issue{},
			&model.User{ID: 5, Role: model.UserRoleCitizen},
			int64(5), model.ActorRoleCitizen),
		Entry("worker assignment on the issue",
			&model.Issue{AssignedStaff: []model.AssignedStaff{{Role: model.StaffRoleWorker, UserID: 5}}},
			&model.User{ID: 5, Role: model.UserRoleStaff},
			int64(5), model.ActorRoleWorker),
		Entry("both lookups failed",
			nil, nil, int64(5), model.ActorRoleCitizen),
	)
})
