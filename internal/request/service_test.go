package request_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/invoice-approval/internal"
	"github.com/frahmantamala/invoice-approval/internal/auth"
	"github.com/frahmantamala/invoice-approval/internal/core/events"
	"github.com/frahmantamala/invoice-approval/internal/request"
)

// Mock repository for testing
type mockRepository struct {
	mu            sync.Mutex
	requests      map[int64]*request.PaymentRequest
	history       map[int64][]*request.HistoryRecord
	conflictsLeft int
	createError   error
	deleted       []int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		requests: make(map[int64]*request.PaymentRequest),
		history:  make(map[int64][]*request.HistoryRecord),
	}
}

func (m *mockRepository) put(req request.PaymentRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := req
	m.requests[r.ID] = &r
}

func (m *mockRepository) Create(_ context.Context, req *request.PaymentRequest, rec *request.HistoryRecord) error {
	if m.createError != nil {
		return m.createError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := *req
	m.requests[r.ID] = &r
	m.history[r.ID] = append(m.history[r.ID], rec)
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*request.PaymentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, internal.ErrRequestNotFound
	}
	r := *req
	return &r, nil
}

func (m *mockRepository) List(_ context.Context, scope request.Scope, ownerID int64, filters request.ListFilters) ([]*request.PaymentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*request.PaymentRequest
	for _, req := range m.requests {
		if !scope.AllCompanies {
			visible := req.RequesterID == ownerID
			for _, cid := range scope.CompanyIDs {
				if req.CompanyID == cid {
					visible = true
				}
			}
			if !visible {
				continue
			}
		}
		if filters.Status != "" && req.Status != filters.Status {
			continue
		}
		r := *req
		out = append(out, &r)
	}
	return out, nil
}

func (m *mockRepository) Update(_ context.Context, req *request.PaymentRequest, expectedUpdatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.requests[req.ID]
	if !ok {
		return internal.ErrRequestNotFound
	}
	if !current.UpdatedAt.Equal(expectedUpdatedAt) {
		return internal.ErrWriteConflict
	}
	r := *req
	m.requests[r.ID] = &r
	return nil
}

func (m *mockRepository) ApplyTransition(_ context.Context, req *request.PaymentRequest, expectedUpdatedAt time.Time, rec *request.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return internal.ErrWriteConflict
	}
	current, ok := m.requests[req.ID]
	if !ok {
		return internal.ErrRequestNotFound
	}
	if !current.UpdatedAt.Equal(expectedUpdatedAt) {
		return internal.ErrWriteConflict
	}
	r := *req
	m.requests[r.ID] = &r
	m.history[r.ID] = append(m.history[r.ID], rec)
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return internal.ErrRequestNotFound
	}
	delete(m.requests, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockRepository) ListForRequest(_ context.Context, requestID int64) ([]*request.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*request.HistoryRecord{}, m.history[requestID]...), nil
}

func (m *mockRepository) Latest(_ context.Context, requestID int64) (*request.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.history[requestID]
	if len(records) == 0 {
		return nil, nil
	}
	return records[len(records)-1], nil
}

type mockActionLog struct {
	mu        sync.Mutex
	deletions []int64
}

func (m *mockActionLog) RecordDeletion(_ context.Context, requestID, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletions = append(m.deletions, requestID)
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int64
}

func (s *sequenceIDs) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

func validCreateDTO() request.CreateRequestDTO {
	method := request.MethodBankSlip
	slip := "/documents/slip-42.pdf"
	return request.CreateRequestDTO{
		CompanyID:           10,
		SectorID:            20,
		SupplierName:        "Fornecedora Alfa Ltda",
		SupplierTaxID:       validSupplierTaxID,
		InvoiceNumber:       "NF-2025-0042",
		IssueDate:           time.Now().AddDate(0, 0, -5),
		DueDate:             time.Now().AddDate(0, 1, 0),
		Description:         "office supplies",
		Amount:              "150000",
		PaymentMethod:       &method,
		SlipDocumentPath:    &slip,
		InvoiceDocumentPath: "/documents/invoice-42.pdf",
	}
}

var _ = Describe("RequestService", func() {
	var (
		repo      *mockRepository
		actionLog *mockActionLog
		publisher *mockPublisher
		recorder  *request.Recorder
		service   *request.Service
		ctx       context.Context

		owner   *auth.User
		manager *auth.User
		finance *auth.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		actionLog = &mockActionLog{}
		publisher = &mockPublisher{}
		recorder = request.NewRecorder(nil)
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = request.NewService(repo, repo, recorder, actionLog, publisher, &sequenceIDs{}, lg, 4)

		owner = requesterUser(100)
		manager = managerUser(200, 10)
		finance = financeUser(300)
	})

	Describe("Create", func() {
		It("persists a submitted request with its creation history record", func() {
			req, err := service.Create(ctx, owner, validCreateDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusSubmitted))
			Expect(req.AmountCents).To(Equal(int64(150000)))
			Expect(req.RequesterID).To(Equal(owner.ID))

			records, _ := repo.ListForRequest(ctx, req.ID)
			Expect(records).To(HaveLen(1))
			Expect(records[0].PreviousStatus).To(BeNil())
			Expect(records[0].DaysToDueDate).NotTo(BeNil())
		})

		It("rejects an invalid supplier tax id before touching storage", func() {
			dto := validCreateDTO()
			dto.SupplierTaxID = "11222333000180"

			_, err := service.Create(ctx, owner, dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTaxID))
			Expect(repo.requests).To(BeEmpty())
		})
	})

	Describe("Transition", func() {
		var created *request.PaymentRequest

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("walks the full lifecycle to paid", func() {
			_, err := service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{Comment: "ok"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Transition(ctx, finance, created.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())

			planned := time.Now().AddDate(0, 0, 20)
			_, err = service.Transition(ctx, finance, created.ID, request.ActionSchedule, request.TransitionPayload{PlannedPaymentDate: &planned})
			Expect(err).NotTo(HaveOccurred())

			final, err := service.Transition(ctx, finance, created.ID, request.ActionMarkPaid, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())
			Expect(final.Status).To(Equal(request.StatusPaid))

			records, _ := repo.ListForRequest(ctx, created.ID)
			Expect(records).To(HaveLen(5))
			Expect(records[0].DaysToDueDate).NotTo(BeNil())
			Expect(records[1].DaysToDueDate).To(BeNil())
		})

		It("denies a manager from another company before the state machine runs", func() {
			otherManager := managerUser(201, 99)

			_, err := service.Transition(ctx, otherManager, created.ID, request.ActionApprove, request.TransitionPayload{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects a manager rejection without a comment", func() {
			_, err := service.Transition(ctx, manager, created.ID, request.ActionReject, request.TransitionPayload{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingComment))
		})

		It("treats a second mark-paid as an invalid transition", func() {
			_, err := service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, finance, created.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, finance, created.ID, request.ActionMarkPaid, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Transition(ctx, finance, created.ID, request.ActionMarkPaid, request.TransitionPayload{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidTransition))
		})

		It("retries once after a write conflict", func() {
			repo.conflictsLeft = 1

			updated, err := service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(request.StatusFinanceReview))
		})

		It("surfaces the conflict when the retry also loses", func() {
			repo.conflictsLeft = 2

			_, err := service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("publishes a status change event on success", func() {
			_, err := service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())

			// one event for creation, one for the transition
			Expect(publisher.events).To(HaveLen(2))
			Expect(publisher.events[1].EventType()).To(Equal(events.EventRequestStatusChanged))
		})

		Describe("resubmission", func() {
			BeforeEach(func() {
				_, err := service.Transition(ctx, manager, created.ID, request.ActionReject, request.TransitionPayload{Comment: "wrong sector"})
				Expect(err).NotTo(HaveOccurred())
			})

			It("applies corrected fields and clears the manager decision", func() {
				edits := validCreateDTO()
				edits.SectorID = 21

				updated, err := service.Transition(ctx, owner, created.ID, request.ActionResubmit, request.TransitionPayload{Edits: &edits})

				Expect(err).NotTo(HaveOccurred())
				Expect(updated.Status).To(Equal(request.StatusSubmitted))
				Expect(updated.SectorID).To(Equal(int64(21)))
				Expect(updated.ManagerComment).To(BeNil())
				Expect(updated.ManagerDecidedAt).To(BeNil())
			})

			It("requires corrected fields", func() {
				_, err := service.Transition(ctx, owner, created.ID, request.ActionResubmit, request.TransitionPayload{})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			})

			It("keeps resubmission away from other users", func() {
				edits := validCreateDTO()

				_, err := service.Transition(ctx, finance, created.ID, request.ActionResubmit, request.TransitionPayload{Edits: &edits})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
			})
		})
	})

	Describe("BatchTransition", func() {
		It("partitions results per request id", func() {
			first, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())

			// first waits in finance review; second is already paid, so
			// the batch approval is illegal for it
			_, err = service.Transition(ctx, manager, first.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, manager, second.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, finance, second.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, finance, second.ID, request.ActionMarkPaid, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.BatchTransition(ctx, finance, request.BatchTransitionDTO{
				IDs:    []int64{first.ID, second.ID},
				Action: string(request.ActionApprove),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Succeeded).To(ConsistOf(first.ID))
			Expect(result.Failed).To(HaveLen(1))
			Expect(result.Failed[0].ID).To(Equal(second.ID))
			Expect(result.Failed[0].Code).To(Equal(string(internal.ErrCodeInvalidTransition)))
		})

		It("validates the batch payload", func() {
			_, err := service.BatchTransition(ctx, finance, request.BatchTransitionDTO{Action: "approve"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Edit", func() {
		It("lets the owner edit while submitted", func() {
			created, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())

			edits := validCreateDTO()
			edits.Description = "updated description"

			updated, err := service.Edit(ctx, owner, created.ID, edits)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Description).To(Equal("updated description"))
			Expect(updated.Status).To(Equal(request.StatusSubmitted))
		})

		It("refuses edits after the manager decision", func() {
			created, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Edit(ctx, owner, created.ID, validCreateDTO())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCannotModify))
		})
	})

	Describe("Delete", func() {
		It("deletes a submitted request and records it in the action log", func() {
			created, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, owner, created.ID)).To(Succeed())
			Expect(repo.deleted).To(ConsistOf(created.ID))
			Expect(actionLog.deletions).To(ConsistOf(created.ID))
		})

		It("refuses deletion once the request left submitted", func() {
			created, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())

			err = service.Delete(ctx, owner, created.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCannotDelete))
		})

		It("refuses deletion by anyone but the owner", func() {
			created, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())

			err = service.Delete(ctx, finance, created.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("ListFor", func() {
		BeforeEach(func() {
			_, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())

			otherOwner := requesterUser(101)
			dto := validCreateDTO()
			dto.CompanyID = 99
			_, err = service.Create(ctx, otherOwner, dto)
			Expect(err).NotTo(HaveOccurred())
		})

		It("shows finance everything", func() {
			reqs, err := service.ListFor(ctx, finance, request.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(2))
		})

		It("restricts a manager to their companies", func() {
			reqs, err := service.ListFor(ctx, manager, request.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].CompanyID).To(Equal(int64(10)))
		})

		It("restricts a requester to their own requests", func() {
			reqs, err := service.ListFor(ctx, owner, request.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].RequesterID).To(Equal(owner.ID))
		})
	})

	Describe("HistoryFor", func() {
		It("returns the trail to users who may view the request", func() {
			created, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Transition(ctx, manager, created.ID, request.ActionApprove, request.TransitionPayload{})
			Expect(err).NotTo(HaveOccurred())

			records, err := service.HistoryFor(ctx, owner, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
		})

		It("hides the trail from unrelated users", func() {
			created, err := service.Create(ctx, owner, validCreateDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.HistoryFor(ctx, requesterUser(999), created.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})
})
