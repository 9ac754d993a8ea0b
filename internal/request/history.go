package request

import (
	"context"
	"time"

	"github.com/frahmantamala/invoice-approval/internal/auth"
	historyDatamodel "github.com/frahmantamala/invoice-approval/internal/core/datamodel/history"
)

// HistoryRecord is one immutable audit row for an accepted transition. The
// first record of a request has a nil previous status and represents
// creation; later records are strictly ordered by creation time.
type HistoryRecord struct {
	ID                int64     `json:"id"`
	RequestID         int64     `json:"request_id"`
	PreviousStatus    *Status   `json:"previous_status,omitempty"`
	NewStatus         Status    `json:"new_status"`
	ActorID           int64     `json:"actor_id"`
	ActorName         string    `json:"actor_name"`
	Comment           *string   `json:"comment,omitempty"`
	RejectionReason   *string   `json:"rejection_reason,omitempty"`
	DaysToDueDate     *int      `json:"days_to_due_date,omitempty"`
	SecondsInPrevious int64     `json:"seconds_in_previous"`
	CreatedAt         time.Time `json:"created_at"`
}

// NameResolver resolves a user id to its current display name. The name is
// denormalized onto the history row at write time so the audit trail
// survives user renames and deletions.
type NameResolver interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

type Recorder struct {
	names NameResolver
}

func NewRecorder(names NameResolver) *Recorder {
	return &Recorder{names: names}
}

// Creation builds the first history row for a request. DaysToDueDate is
// snapshotted here, and only here, so downstream reporting can bucket the
// payment term the requester originally asked for.
func (r *Recorder) Creation(ctx context.Context, req *PaymentRequest, actor *auth.User, now time.Time) *HistoryRecord {
	days := daysBetween(now, req.DueDate)
	return &HistoryRecord{
		RequestID:     req.ID,
		NewStatus:     req.Status,
		ActorID:       actor.ID,
		ActorName:     r.resolveName(ctx, actor),
		DaysToDueDate: &days,
		CreatedAt:     now,
	}
}

// Transition builds the audit row for a transition out of previousStatus.
// previousAt is the creation time of the request's latest history row; the
// duration is derived server-side from stored timestamps, never from client
// clocks.
func (r *Recorder) Transition(ctx context.Context, req *PaymentRequest, previousStatus Status, actor *auth.User, comment string, previousAt, now time.Time) *HistoryRecord {
	prev := previousStatus
	rec := &HistoryRecord{
		RequestID:         req.ID,
		PreviousStatus:    &prev,
		NewStatus:         req.Status,
		ActorID:           actor.ID,
		ActorName:         r.resolveName(ctx, actor),
		SecondsInPrevious: int64(now.Sub(previousAt).Seconds()),
		CreatedAt:         now,
	}

	if comment != "" {
		c := comment
		rec.Comment = &c
	}

	if req.Status.IsRejected() {
		reason := comment
		rec.RejectionReason = &reason
	}

	return rec
}

func (r *Recorder) resolveName(ctx context.Context, actor *auth.User) string {
	if r.names != nil {
		if name, err := r.names.DisplayName(ctx, actor.ID); err == nil && name != "" {
			return name
		}
	}
	// the profile loaded at authentication time is the fallback
	return actor.Name
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

func HistoryToDataModel(h *HistoryRecord) *historyDatamodel.Record {
	m := &historyDatamodel.Record{
		ID:                h.ID,
		RequestID:         h.RequestID,
		NewStatus:         string(h.NewStatus),
		ActorID:           h.ActorID,
		ActorName:         h.ActorName,
		Comment:           h.Comment,
		RejectionReason:   h.RejectionReason,
		DaysToDueDate:     h.DaysToDueDate,
		SecondsInPrevious: h.SecondsInPrevious,
		CreatedAt:         h.CreatedAt,
	}
	if h.PreviousStatus != nil {
		prev := string(*h.PreviousStatus)
		m.PreviousStatus = &prev
	}
	return m
}

func HistoryFromDataModel(m *historyDatamodel.Record) *HistoryRecord {
	h := &HistoryRecord{
		ID:                m.ID,
		RequestID:         m.RequestID,
		NewStatus:         Status(m.NewStatus),
		ActorID:           m.ActorID,
		ActorName:         m.ActorName,
		Comment:           m.Comment,
		RejectionReason:   m.RejectionReason,
		DaysToDueDate:     m.DaysToDueDate,
		SecondsInPrevious: m.SecondsInPrevious,
		CreatedAt:         m.CreatedAt,
	}
	if m.PreviousStatus != nil {
		prev := Status(*m.PreviousStatus)
		h.PreviousStatus = &prev
	}
	return h
}

func HistoryFromDataModelSlice(rows []*historyDatamodel.Record) []*HistoryRecord {
	result := make([]*HistoryRecord, len(rows))
	for i, m := range rows {
		result[i] = HistoryFromDataModel(m)
	}
	return result
}
