package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventRequestStatusChanged = "request.status_changed"
	EventRequestDeleted       = "request.deleted"
)

// NewRequestStatusChanged announces a committed status transition so
// observers can refresh their views. The stored row is the source of truth;
// nothing downstream relies on this event arriving.
func NewRequestStatusChanged(requestID int64, newStatus string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventRequestStatusChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"table":      "payment_requests",
			"request_id": requestID,
			"new_status": newStatus,
		},
	}
}

// NewRequestDeleted records the requester-initiated deletion of a request
// that never left the submitted status.
func NewRequestDeleted(requestID, actorID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventRequestDeleted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"table":      "payment_requests",
			"request_id": requestID,
			"actor_id":   actorID,
		},
	}
}
