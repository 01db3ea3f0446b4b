package audit

import "time"

// Delivery is an immutable, append-only record of one inbound webhook
// dispatch: which platform delivered it, what events were detected, and
// how each outbound action went.
//
// Invariants:
// - Records are never updated or deleted.
// - Recording is best-effort; dispatch never fails on audit errors.
//
// Storage recommendation (Postgres):
// - Table dispatch_deliveries with an INSERT-only policy.
// - Optional: partition by received_at for retention.

type Delivery struct {
	ID             string `json:"id" db:"id"`
	Source         string `json:"source" db:"source"`
	ConversationID string `json:"conversation_id" db:"conversation_id"`

	// Outcomes holds one entry per detected event, emission order.
	Outcomes []Outcome `json:"outcomes" db:"outcomes"`

	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}

// Outcome is the result of one detected event's outbound action.
type Outcome struct {
	Event  string `json:"event"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
