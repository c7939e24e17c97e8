package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/service"
)

var _ = Describe("Recommender", func() {
	var (
		rec    service.Recommender
		issues *mockIssueStore
		tasks  *mockTaskStore
		users  *mockUserStore
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		issues = &mockIssueStore{}
		tasks = &mockTaskStore{}
		users = &mockUserStore{}

		users.getByIDFn = func(_ context.Context, userID int64) (*model.User, error) {
			return &model.User{ID: userID, Name: "staff", Role: model.UserRoleStaff}, nil
		}

		rec = service.NewRecommender(issues, tasks, users)
	})

	// Two past road issues for user 1 (both resolved by them), two for
	// user 2 (one resolved). No declared expertise anywhere.
	historyFor := func(target model.Issue) {
		issues.getByIDFn = func(_ context.Context, _ int64) (*model.Issue, error) {
			return &target, nil
		}
		one, two := int64(1), int64(2)
		issues.listByCategoryFn = func(_ context.Context, category model.Category) ([]model.Issue, error) {
			Expect(category).To(Equal(model.CategoryRoad))
			return []model.Issue{
				{ID: 100, AssignedStaff: []model.AssignedStaff{{Role: model.StaffRoleWorker, UserID: one}}, ResolvedBy: &one},
				{ID: 101, AssignedStaff: []model.AssignedStaff{{Role: model.StaffRoleWorker, UserID: one}}, ResolvedBy: &one},
				{ID: 102, AssignedStaff: []model.AssignedStaff{{Role: model.StaffRoleWorker, UserID: two}}, ResolvedBy: &two},
				{ID: 103, AssignedStaff: []model.AssignedStaff{{Role: model.StaffRoleWorker, UserID: two}}},
			}, nil
		}
	}

	It("ranks the perfect solver above the partial solver", func() {
		historyFor(model.Issue{ID: 1, Category: model.CategoryRoad})

		recs, err := rec.Recommend(ctx, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(2))
		Expect(recs[0].UserID).To(Equal(int64(1)))
		Expect(recs[0].SolvedRate).To(BeNumerically("==", 1.0))
		Expect(recs[1].UserID).To(Equal(int64(2)))
		Expect(recs[1].SolvedRate).To(BeNumerically("==", 0.5))
	})

	It("suggests supervisor for the top rank when the issue has none", func() {
		historyFor(model.Issue{ID: 1, Category: model.CategoryRoad})

		recs, err := rec.Recommend(ctx, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(recs[0].SuggestedRole).To(Equal(model.StaffRoleSupervisor))
		Expect(recs[1].SuggestedRole).To(Equal(model.StaffRoleCoordinator))
	})

	It("shifts roles down when a supervisor already exists", func() {
		historyFor(model.Issue{
			ID:       1,
			Category: model.CategoryRoad,
			AssignedStaff: []model.AssignedStaff{
				{Role: model.StaffRoleSupervisor, UserID: 50},
			},
		})

		recs, err := rec.Recommend(ctx, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(recs[0].SuggestedRole).To(Equal(model.StaffRoleCoordinator))
		Expect(recs[1].SuggestedRole).To(Equal(model.StaffRoleWorker))
	})

	It("excludes staff already assigned to the issue", func() {
		historyFor(model.Issue{
			ID:       1,
			Category: model.CategoryRoad,
			AssignedStaff: []model.AssignedStaff{
				{Role: model.StaffRoleWorker, UserID: 1},
			},
		})

		recs, err := rec.Recommend(ctx, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(1))
		Expect(recs[0].UserID).To(Equal(int64(2)))
	})

	It("includes declared experts with no history and credits the expertise bonus", func() {
		historyFor(model.Issue{ID: 1, Category: model.CategoryRoad})
		users.listByExpertiseFn = func(_ context.Context, _ model.Category) ([]model.User, error) {
			return []model.User{{ID: 3, Name: "expert", Role: model.UserRoleStaff, Expertise: []model.Category{model.CategoryRoad}}}, nil
		}

		recs, err := rec.Recommend(ctx, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(3))

		var expert *service.Recommendation
		for i := range recs {
			if recs[i].UserID == 3 {
				expert = &recs[i]
			}
		}
		Expect(expert).NotTo(BeNil())
		Expect(expert.HasExpertise).To(BeTrue())
		Expect(expert.SolvedRate).To(BeZero())
		Expect(expert.Score).To(BeNumerically("~", 0.10, 1e-9))
	})

	It("weights completion rate and participation into the score", func() {
		historyFor(model.Issue{ID: 1, Category: model.CategoryRoad})
		tasks.countByAssigneeFn = func(_ context.Context, userID int64) (int, int, error) {
			if userID == 1 {
				return 4, 2, nil
			}
			return 0, 0, nil
		}

		recs, err := rec.Recommend(ctx, 1)

		Expect(err).NotTo(HaveOccurred())
		// 0.50*1.0 + 0.25*0.5 + 0.15*1.0 (both have the max assigned count)
		Expect(recs[0].UserID).To(Equal(int64(1)))
		Expect(recs[0].Score).To(BeNumerically("~", 0.775, 1e-9))
	})

	It("returns nothing for an empty candidate pool", func() {
		issues.getByIDFn = func(_ context.Context, _ int64) (*model.Issue, error) {
			return &model.Issue{ID: 1, Category: model.CategoryGarbage}, nil
		}

		recs, err := rec.Recommend(ctx, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(BeEmpty())
	})
})
