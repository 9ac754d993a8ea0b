package request_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/invoice-approval/internal/request"
)

type mapNameResolver struct {
	names map[int64]string
	err   error
}

func (m *mapNameResolver) DisplayName(_ context.Context, userID int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.names[userID], nil
}

var _ = Describe("Recorder", func() {
	var (
		recorder *request.Recorder
		resolver *mapNameResolver
		ctx      context.Context
	)

	now := time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC)

	BeforeEach(func() {
		ctx = context.Background()
		resolver = &mapNameResolver{names: map[int64]string{100: "Maria Requester"}}
		recorder = request.NewRecorder(resolver)
	})

	Describe("Creation", func() {
		It("snapshots the days to due date on the first record only", func() {
			req := baseRequest(request.StatusSubmitted)
			req.DueDate = now.AddDate(0, 0, 45)
			actor := requesterUser(100)

			rec := recorder.Creation(ctx, &req, actor, now)

			Expect(rec.PreviousStatus).To(BeNil())
			Expect(rec.NewStatus).To(Equal(request.StatusSubmitted))
			Expect(rec.DaysToDueDate).To(HaveValue(Equal(45)))
			Expect(rec.SecondsInPrevious).To(BeZero())
		})

		It("denormalizes the actor name from the resolver", func() {
			req := baseRequest(request.StatusSubmitted)

			rec := recorder.Creation(ctx, &req, requesterUser(100), now)

			Expect(rec.ActorName).To(Equal("Maria Requester"))
		})

		It("falls back to the authenticated name when the resolver fails", func() {
			resolver.err = errors.New("directory down")
			req := baseRequest(request.StatusSubmitted)

			rec := recorder.Creation(ctx, &req, requesterUser(100), now)

			Expect(rec.ActorName).To(Equal("Maria"))
		})
	})

	Describe("Transition", func() {
		It("derives the time spent in the previous status from stored timestamps", func() {
			req := baseRequest(request.StatusFinanceReview)
			previousAt := now.Add(-90 * time.Second)

			rec := recorder.Transition(ctx, &req, request.StatusSubmitted, managerUser(200, req.CompanyID), "ok", previousAt, now)

			Expect(rec.PreviousStatus).To(HaveValue(Equal(request.StatusSubmitted)))
			Expect(rec.NewStatus).To(Equal(request.StatusFinanceReview))
			Expect(rec.SecondsInPrevious).To(Equal(int64(90)))
			Expect(rec.DaysToDueDate).To(BeNil())
		})

		It("copies the comment into the rejection reason on rejections", func() {
			req := baseRequest(request.StatusManagerRejected)

			rec := recorder.Transition(ctx, &req, request.StatusSubmitted, managerUser(200, req.CompanyID), "missing cost center", now.Add(-time.Hour), now)

			Expect(rec.Comment).To(HaveValue(Equal("missing cost center")))
			Expect(rec.RejectionReason).To(HaveValue(Equal("missing cost center")))
		})

		It("leaves the rejection reason empty on forward transitions", func() {
			req := baseRequest(request.StatusApproved)

			rec := recorder.Transition(ctx, &req, request.StatusFinanceReview, financeUser(300), "", now.Add(-time.Minute), now)

			Expect(rec.Comment).To(BeNil())
			Expect(rec.RejectionReason).To(BeNil())
		})
	})
})
