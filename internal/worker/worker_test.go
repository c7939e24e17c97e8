package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"civicgrid.app/core/core/config"
	"civicgrid.app/core/internal/model"
	"civicgrid.app/core/internal/worker"
)

func emailJob(id int64, jobType model.JobType) *model.Job {
	payload, err := json.Marshal(model.EmailPayload{
		RecipientID:    2,
		RecipientEmail: "staff@example.com",
		IssueID:        10,
		IssueTitle:     "Broken streetlight",
		Detail:         "due Friday",
	})
	Expect(err).NotTo(HaveOccurred())
	return &model.Job{
		ID:      id,
		Type:    jobType,
		Payload: payload,
		Status:  model.JobStatusPending,
	}
}

var _ = Describe("Worker", func() {
	var (
		jobs   *mockJobStore
		sender *mockSender
		cfg    config.WorkerConfig
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		sender = &mockSender{}
		cfg = config.WorkerConfig{
			PollInterval: 10 * time.Millisecond,
			MaxAttempts:  3,
		}
	})

	Describe("Drain", func() {
		It("processes every pending job and marks them completed", func() {
			jobs = newMockJobStore(
				emailJob(1, model.JobTypeAssignmentEmail),
				emailJob(2, model.JobTypeEscalationEmail),
			)
			w := worker.New(jobs, sender, cfg)

			Expect(w.Drain(ctx)).To(Succeed())

			Expect(sender.sent).To(HaveLen(2))
			Expect(sender.sent[0].To).To(Equal("staff@example.com"))
			Expect(jobs.completed).To(ConsistOf(int64(1), int64(2)))
			Expect(jobs.statusOf(1)).To(Equal(model.JobStatusCompleted))
		})

		It("marks a job failed with the error text when delivery fails", func() {
			jobs = newMockJobStore(emailJob(1, model.JobTypeReminderEmail))
			sender.sendFn = func(context.Context, string, string, string) error {
				return errors.New("smtp timeout")
			}
			w := worker.New(jobs, sender, cfg)

			Expect(w.Drain(ctx)).To(Succeed())

			Expect(jobs.statusOf(1)).To(Equal(model.JobStatusFailed))
			Expect(jobs.failed[1]).To(ContainSubstring("smtp timeout"))
			Expect(jobs.completed).To(BeEmpty())
		})

		It("does not retry a failed job on later drains by default", func() {
			jobs = newMockJobStore(emailJob(1, model.JobTypeReminderEmail))
			sender.sendFn = func(context.Context, string, string, string) error {
				return errors.New("smtp timeout")
			}
			w := worker.New(jobs, sender, cfg)

			Expect(w.Drain(ctx)).To(Succeed())
			Expect(w.Drain(ctx)).To(Succeed())

			Expect(sender.sent).To(HaveLen(1))
			Expect(jobs.statusOf(1)).To(Equal(model.JobStatusFailed))
		})

		It("recovers a panicking delivery and marks the job failed", func() {
			jobs = newMockJobStore(emailJob(1, model.JobTypeCompletionEmail))
			sender.sendFn = func(context.Context, string, string, string) error {
				panic("template exploded")
			}
			w := worker.New(jobs, sender, cfg)

			Expect(w.Drain(ctx)).To(Succeed())

			Expect(jobs.statusOf(1)).To(Equal(model.JobStatusFailed))
			Expect(jobs.failed[1]).To(ContainSubstring("panic"))
		})

		It("fails a job with an undecodable payload", func() {
			jobs = newMockJobStore(&model.Job{
				ID:      1,
				Type:    model.JobTypeAssignmentEmail,
				Payload: []byte("{not json"),
				Status:  model.JobStatusPending,
			})
			w := worker.New(jobs, sender, cfg)

			Expect(w.Drain(ctx)).To(Succeed())

			Expect(jobs.statusOf(1)).To(Equal(model.JobStatusFailed))
			Expect(sender.sent).To(BeEmpty())
		})

		It("fails a job with an unknown type", func() {
			job := emailJob(1, "carrier_pigeon_delivery")
			jobs = newMockJobStore(job)
			w := worker.New(jobs, sender, cfg)

			Expect(w.Drain(ctx)).To(Succeed())

			Expect(jobs.statusOf(1)).To(Equal(model.JobStatusFailed))
		})

		It("increments attempts on each claim", func() {
			jobs = newMockJobStore(emailJob(1, model.JobTypeResolutionEmail))
			w := worker.New(jobs, sender, cfg)

			Expect(w.Drain(ctx)).To(Succeed())

			Expect(jobs.jobs[0].Attempts).To(Equal(1))
		})
	})

	Describe("Run with retry enabled", func() {
		It("re-queues failed jobs under the attempt limit and delivers them", func() {
			cfg.RetryFailed = true
			jobs = newMockJobStore(emailJob(1, model.JobTypeRejectionEmail))

			calls := 0
			sender.sendFn = func(context.Context, string, string, string) error {
				calls++
				if calls == 1 {
					return errors.New("transient smtp error")
				}
				return nil
			}
			w := worker.New(jobs, sender, cfg)

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			Eventually(func() model.JobStatus {
				return jobs.statusOf(1)
			}).WithTimeout(time.Second).Should(Equal(model.JobStatusCompleted))

			w.Stop()
			Expect(<-done).To(Succeed())
			Expect(jobs.jobs[0].Attempts).To(Equal(2))
		})
	})
})

var _ = Describe("Reclaimer", func() {
	It("returns stale processing jobs to pending", func() {
		ctx := context.Background()
		stale := emailJob(1, model.JobTypeAssignmentEmail)
		stale.Status = model.JobStatusProcessing
		stale.UpdatedAt = time.Now().Add(-time.Hour)
		fresh := emailJob(2, model.JobTypeAssignmentEmail)
		fresh.Status = model.JobStatusProcessing
		fresh.UpdatedAt = time.Now()

		jobs := newMockJobStore(stale, fresh)
		r := worker.NewReclaimer(jobs, worker.ReclaimerConfig{
			MinIdle:  10 * time.Minute,
			Interval: 5 * time.Millisecond,
		})

		go r.Run(ctx)
		Eventually(func() model.JobStatus {
			return jobs.statusOf(1)
		}).WithTimeout(time.Second).Should(Equal(model.JobStatusPending))
		r.Stop()

		Expect(jobs.statusOf(2)).To(Equal(model.JobStatusProcessing))
	})
})
