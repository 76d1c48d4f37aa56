package models

import "time"

// GatewayEvent is a single diagnostics log entry recorded whenever a gateway
// operation degrades to its fallback.
type GatewayEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Op          string    `json:"op"`     // LOGIN | LIST_SPOTS | LIST_RESERVATIONS | CREATE_RESERVATION | SAVE_SCHEDULE
	Reason      string    `json:"reason"` // TRANSPORT | STATUS | SHAPE | EMPTY
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
