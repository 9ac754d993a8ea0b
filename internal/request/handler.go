package request

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/invoice-approval/internal/auth"
	"github.com/frahmantamala/invoice-approval/internal/transport"
	"github.com/frahmantamala/invoice-approval/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *auth.User, dto CreateRequestDTO) (*PaymentRequest, error)
	GetByID(ctx context.Context, actor *auth.User, id int64) (*PaymentRequest, error)
	ListFor(ctx context.Context, actor *auth.User, filters ListFilters) ([]*PaymentRequest, error)
	Edit(ctx context.Context, actor *auth.User, id int64, dto CreateRequestDTO) (*PaymentRequest, error)
	Delete(ctx context.Context, actor *auth.User, id int64) error
	Transition(ctx context.Context, actor *auth.User, id int64, action Action, payload TransitionPayload) (*PaymentRequest, error)
	BatchTransition(ctx context.Context, actor *auth.User, dto BatchTransitionDTO) (*BatchResult, error)
	HistoryFor(ctx context.Context, actor *auth.User, id int64) ([]*HistoryRecord, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateRequest: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Create(r.Context(), user, dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	req, err := h.Service.GetByID(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filters := ListFilters{Limit: 20}

	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		filters.Status = Status(status)
	}
	if companyStr := q.Get("company_id"); companyStr != "" {
		if companyID, err := strconv.ParseInt(companyStr, 10, 64); err == nil {
			filters.CompanyID = &companyID
		}
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			filters.Limit = l
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filters.Offset = o
		}
	}

	reqs, err := h.Service.ListFor(r.Context(), user, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) EditRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("EditRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Edit(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, ActionApprove)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, ActionReject)
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, ActionMarkPaid)
}

func (h *Handler) SchedulePayment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SchedulePayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload := TransitionPayload{Comment: dto.Comment, PlannedPaymentDate: &dto.PlannedPaymentDate}
	req, err := h.Service.Transition(r.Context(), user, id, ActionSchedule, payload)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) ResubmitRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	var dto ResubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ResubmitRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Transition(r.Context(), user, id, ActionResubmit, TransitionPayload{Edits: &dto.CreateRequestDTO})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) BatchTransition(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto BatchTransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("BatchTransition: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.BatchTransition(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// a batch with failures still returns 200: outcomes are per id
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetRequestHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	records, err := h.Service.HistoryFor(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

// decide handles the approve/reject/mark-paid actions, which share the
// optional-comment body. An empty body is fine; the state machine decides
// when a comment is mandatory.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action Action) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	var dto DecisionDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("decide: invalid request body", "error", err, "action", action)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	req, err := h.Service.Transition(r.Context(), user, id, action, TransitionPayload{Comment: dto.Comment})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid request ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return 0, false
	}
	return id, true
}
