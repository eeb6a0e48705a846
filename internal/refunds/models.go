package refunds

import (
	"time"

	"github.com/google/uuid"
)

// EventCancelledMessage is published when an event is cancelled and consumed
// by the refund workers.
type EventCancelledMessage struct {
	EventID     uuid.UUID `json:"event_id"`
	EventName   string    `json:"event_name"`
	CancelledAt time.Time `json:"cancelled_at"`
}
