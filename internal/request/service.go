package request

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/invoice-approval/internal"
	"github.com/frahmantamala/invoice-approval/internal/auth"
	"github.com/frahmantamala/invoice-approval/internal/core/events"
)

// Repository is the persistence contract for payment requests. Writes that
// pair a request row with a history row must be atomic, and updates carry an
// optimistic guard: the row must still have the updated_at value that was
// read, otherwise ErrWriteConflict comes back and nothing is written.
type Repository interface {
	Create(ctx context.Context, req *PaymentRequest, rec *HistoryRecord) error
	GetByID(ctx context.Context, id int64) (*PaymentRequest, error)
	List(ctx context.Context, scope Scope, ownerID int64, filters ListFilters) ([]*PaymentRequest, error)
	Update(ctx context.Context, req *PaymentRequest, expectedUpdatedAt time.Time) error
	ApplyTransition(ctx context.Context, req *PaymentRequest, expectedUpdatedAt time.Time, rec *HistoryRecord) error
	Delete(ctx context.Context, id int64) error
}

// HistoryRepository reads the append-only audit trail.
type HistoryRepository interface {
	ListForRequest(ctx context.Context, requestID int64) ([]*HistoryRecord, error)
	Latest(ctx context.Context, requestID int64) (*HistoryRecord, error)
}

// ActionLog is the external collaborator that keeps a record of destructive
// side effects that are not state-machine transitions, such as deleting a
// draft request.
type ActionLog interface {
	RecordDeletion(ctx context.Context, requestID, actorID int64) error
}

// Publisher is the best-effort change-notification feed. It is never part
// of the workflow's correctness.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IDGenerator interface {
	NextID() int64
}

// TransitionPayload carries the per-action extras: a comment, the planned
// payment date for schedule, and the corrected fields for resubmit.
type TransitionPayload struct {
	Comment            string
	PlannedPaymentDate *time.Time
	Edits              *CreateRequestDTO
}

// BatchResult partitions a batch by outcome. Each id succeeds or fails on
// its own merits; there is no cross-id rollback.
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

type BatchFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Service orchestrates the request lifecycle: validate payload, authorize,
// run the state machine, persist request plus history atomically, then
// notify. A write conflict is retried once against a freshly loaded row.
type Service struct {
	repo       Repository
	history    HistoryRepository
	recorder   *Recorder
	gate       Gate
	actionLog  ActionLog
	publisher  Publisher
	ids        IDGenerator
	logger     *slog.Logger
	batchLimit int
	clock      func() time.Time
}

func NewService(repo Repository, history HistoryRepository, recorder *Recorder, actionLog ActionLog, publisher Publisher, ids IDGenerator, logger *slog.Logger, batchLimit int) *Service {
	if batchLimit < 1 {
		batchLimit = 1
	}
	return &Service{
		repo:       repo,
		history:    history,
		recorder:   recorder,
		gate:       NewGate(),
		actionLog:  actionLog,
		publisher:  publisher,
		ids:        ids,
		logger:     logger,
		batchLimit: batchLimit,
		clock:      time.Now,
	}
}

// Create validates the payload and persists a new request in the submitted
// status together with its creation history record.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateRequestDTO) (*PaymentRequest, error) {
	now := s.clock()

	if err := dto.Validate(now); err != nil {
		s.logger.Warn("request validation failed", "error", err, "requester_id", actor.ID)
		return nil, err
	}

	req := s.buildRequest(actor, dto, now)
	rec := s.recorder.Creation(ctx, req, actor, now)

	if err := s.repo.Create(ctx, req, rec); err != nil {
		s.logger.Error("failed to create request", "error", err, "requester_id", actor.ID)
		return nil, internal.NewDependencyError("could not persist request", err)
	}

	s.notifyStatusChange(ctx, req)

	s.logger.Info("request created",
		"request_id", req.ID,
		"requester_id", actor.ID,
		"company_id", req.CompanyID,
		"amount_cents", req.AmountCents)

	return req, nil
}

// GetByID loads a request the actor is allowed to see.
func (s *Service) GetByID(ctx context.Context, actor *auth.User, id int64) (*PaymentRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.gate.CanView(actor, req) {
		s.logger.Warn("request view denied", "request_id", id, "user_id", actor.ID)
		return nil, internal.ErrUnauthorizedAccess
	}

	return req, nil
}

// ListFor returns the requests visible to the actor: their own, plus those
// of companies they manage, plus everything for finance and admin.
func (s *Service) ListFor(ctx context.Context, actor *auth.User, filters ListFilters) ([]*PaymentRequest, error) {
	scope := s.gate.VisibleScope(actor)

	reqs, err := s.repo.List(ctx, scope, actor.ID, filters)
	if err != nil {
		s.logger.Error("failed to list requests", "error", err, "user_id", actor.ID)
		return nil, internal.NewDependencyError("could not list requests", err)
	}

	return reqs, nil
}

// HistoryFor returns the audit trail of a request the actor may see.
func (s *Service) HistoryFor(ctx context.Context, actor *auth.User, id int64) ([]*HistoryRecord, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanView(actor, req) {
		return nil, internal.ErrUnauthorizedAccess
	}

	return s.history.ListForRequest(ctx, id)
}

// Edit applies field changes while the request has not entered review, or
// after a manager rejection. Only the owning requester may edit; status is
// untouched and no history row is written.
func (s *Service) Edit(ctx context.Context, actor *auth.User, id int64, dto CreateRequestDTO) (*PaymentRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.gate.CanEdit(actor, req) {
		s.logger.Warn("request edit denied", "request_id", id, "user_id", actor.ID)
		return nil, internal.ErrUnauthorizedAccess
	}
	if !req.CanBeEdited() {
		return nil, internal.ErrCannotModify
	}

	now := s.clock()
	if err := dto.Validate(now); err != nil {
		return nil, err
	}

	readUpdatedAt := req.UpdatedAt
	applyEdits(req, dto)
	req.UpdatedAt = now

	if err := s.repo.Update(ctx, req, readUpdatedAt); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConflict {
			return nil, err
		}
		s.logger.Error("failed to update request", "error", err, "request_id", id)
		return nil, internal.NewDependencyError("could not persist request", err)
	}

	return req, nil
}

// Delete removes a request that never left the submitted status. Deletion
// is not a state-machine transition, so it goes to the external action log
// instead of the history table.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.gate.CanDelete(actor, req) {
		s.logger.Warn("request delete denied", "request_id", id, "user_id", actor.ID)
		return internal.ErrUnauthorizedAccess
	}
	if !req.CanBeDeleted() {
		return internal.ErrCannotDelete
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete request", "error", err, "request_id", id)
		return internal.NewDependencyError("could not delete request", err)
	}

	if s.actionLog != nil {
		if err := s.actionLog.RecordDeletion(ctx, id, actor.ID); err != nil {
			s.logger.Error("failed to record deletion in action log", "error", err, "request_id", id)
		}
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.NewRequestDeleted(id, actor.ID))
	}

	s.logger.Info("request deleted", "request_id", id, "user_id", actor.ID)
	return nil
}

// Transition runs one action through the full pipeline. On a write conflict
// the operation is retried once against a freshly reloaded row so a
// concurrent decision is never silently dropped.
func (s *Service) Transition(ctx context.Context, actor *auth.User, id int64, action Action, payload TransitionPayload) (*PaymentRequest, error) {
	req, err := s.attemptTransition(ctx, actor, id, action, payload)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConflict {
			s.logger.Warn("write conflict, retrying transition once", "request_id", id, "action", action)
			return s.attemptTransition(ctx, actor, id, action, payload)
		}
		return nil, err
	}
	return req, nil
}

func (s *Service) attemptTransition(ctx context.Context, actor *auth.User, id int64, action Action, payload TransitionPayload) (*PaymentRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.gate.CanTransition(actor, req, action) {
		s.logger.Warn("transition denied",
			"request_id", id,
			"user_id", actor.ID,
			"action", action,
			"status", req.Status)
		return nil, internal.ErrUnauthorizedAccess
	}

	now := s.clock()
	role := s.gate.EffectiveRole(actor, req, action)
	previousStatus := req.Status
	readUpdatedAt := req.UpdatedAt

	working := *req

	if action == ActionResubmit {
		if payload.Edits == nil {
			return nil, internal.NewValidationError("corrected request fields are required to resubmit", internal.ErrCodeValidationFailed)
		}
		if err := payload.Edits.Validate(now); err != nil {
			return nil, err
		}
		applyEdits(&working, *payload.Edits)
		// resubmission starts a fresh submission window for the
		// early-due-date policy
		working.SubmittedAt = now
	}

	updated, err := ApplyTransition(working, TransitionInput{
		Action:             action,
		ActorRole:          role,
		Comment:            payload.Comment,
		PlannedPaymentDate: payload.PlannedPaymentDate,
		Now:                now,
	})
	if err != nil {
		return nil, err
	}

	previousAt := s.previousRecordTime(ctx, id, req)
	rec := s.recorder.Transition(ctx, &updated, previousStatus, actor, payload.Comment, previousAt, now)

	if err := s.repo.ApplyTransition(ctx, &updated, readUpdatedAt, rec); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConflict {
			return nil, err
		}
		s.logger.Error("failed to persist transition", "error", err, "request_id", id, "action", action)
		return nil, internal.NewDependencyError("could not persist transition", err)
	}

	s.notifyStatusChange(ctx, &updated)

	s.logger.Info("request transitioned",
		"request_id", id,
		"action", action,
		"from", previousStatus,
		"to", updated.Status,
		"actor_id", actor.ID,
		"actor_role", role)

	return &updated, nil
}

// BatchTransition fans the same action out over a set of ids with bounded
// concurrency. Requests succeed or fail independently; the result reports
// the partition.
func (s *Service) BatchTransition(ctx context.Context, actor *auth.User, dto BatchTransitionDTO) (*BatchResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	payload := TransitionPayload{
		Comment:            dto.Comment,
		PlannedPaymentDate: dto.PlannedPaymentDate,
	}
	action := Action(dto.Action)

	var mu sync.Mutex
	result := &BatchResult{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)

	for _, id := range dto.IDs {
		id := id
		g.Go(func() error {
			_, err := s.Transition(gctx, actor, id, action, payload)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, toBatchFailure(id, err))
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			// per-id failures never cancel the rest of the batch
			return nil
		})
	}

	_ = g.Wait()

	s.logger.Info("batch transition finished",
		"action", action,
		"total", len(dto.IDs),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed))

	return result, nil
}

func (s *Service) buildRequest(actor *auth.User, dto CreateRequestDTO, now time.Time) *PaymentRequest {
	req := &PaymentRequest{
		ID:          s.ids.NextID(),
		RequesterID: actor.ID,
		Status:      StatusSubmitted,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyEdits(req, dto)
	return req
}

// previousRecordTime anchors the in-previous-status duration on the latest
// history row; a request without history falls back to its submission time.
func (s *Service) previousRecordTime(ctx context.Context, id int64, req *PaymentRequest) time.Time {
	latest, err := s.history.Latest(ctx, id)
	if err != nil || latest == nil {
		return req.SubmittedAt
	}
	return latest.CreatedAt
}

func (s *Service) notifyStatusChange(ctx context.Context, req *PaymentRequest) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewRequestStatusChanged(req.ID, string(req.Status))); err != nil {
		// notifications are fire-and-forget; stored state is the truth
		s.logger.Warn("failed to publish status change", "error", err, "request_id", req.ID)
	}
}

func applyEdits(req *PaymentRequest, dto CreateRequestDTO) {
	req.CompanyID = dto.CompanyID
	req.SectorID = dto.SectorID
	req.CostCenterID = dto.CostCenterID
	req.SupplierName = dto.SupplierName
	req.SupplierTaxID = dto.SupplierTaxID
	req.InvoiceNumber = dto.InvoiceNumber
	req.IssueDate = dto.IssueDate
	req.DueDate = dto.DueDate
	req.Description = dto.Description
	req.AmountCents = dto.AmountCents()
	req.PaymentMethod = dto.PaymentMethod
	req.Bank = dto.Bank
	req.Branch = dto.Branch
	req.AccountNumber = dto.AccountNumber
	req.PixKey = dto.PixKey
	req.HolderName = dto.HolderName
	req.HolderTaxID = dto.HolderTaxID
	req.SlipDocumentPath = dto.SlipDocumentPath
	req.EarlyDueDateJustification = dto.EarlyDueDateJustification
	req.TitularJustification = dto.TitularJustification
	req.InvoiceDocumentPath = dto.InvoiceDocumentPath
}

func toBatchFailure(id int64, err error) BatchFailure {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return BatchFailure{ID: id, Error: appErr.Message, Code: string(appErr.Code)}
	}
	return BatchFailure{ID: id, Error: err.Error(), Code: string(internal.ErrCodeDependencyUnavailable)}
}
