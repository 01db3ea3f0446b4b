package ccc

import "context"

// AgentService is the uniform outbound-action contract every destination
// platform adapter implements.
//
// Rules:
// - No platform SDK or HTTP calls outside adapters.
// - All network-touching operations take a context and surface
//   transport/upstream errors to the caller instead of swallowing them.
// - Adapters branch on capability flags, never on concrete types.
type AgentService interface {
	Name() string

	// SendMessage issues exactly one outbound request translating the
	// canonical message into the destination's shape.
	SendMessage(ctx context.Context, msg Message) (SendResult, error)

	// StartConversation bootstraps a session. Session-oriented platforms
	// implement this as a strictly sequential two-phase call: create the
	// session shell, then send the initial message reusing the same
	// conversation id. A phase-1 failure aborts; partial starts surface
	// as errors, never silently.
	StartConversation(ctx context.Context, msg Message) (SendResult, error)

	// EndConversation sends the platform's end-of-session action.
	EndConversation(ctx context.Context, conversationID string) (SendResult, error)

	// SendTyping syncs the agent typing state. conversationID is
	// required; an empty id returns ErrValidation before any I/O.
	SendTyping(ctx context.Context, conversationID string, isTyping bool) (SendResult, error)

	// SupportsTypingSync reports whether SendTyping does anything on
	// this platform. Callers skip typing sync when false.
	SupportsTypingSync() bool

	// IsAvailable reports whether an agent can take a conversation for
	// the given skill.
	IsAvailable(skill string) bool
}

// SendResult is the acknowledgement of one outbound platform call.
type SendResult struct {
	// Status is the downstream HTTP status.
	Status int `json:"status"`

	// Body is the raw response body, kept for audit/debugging.
	Body string `json:"body,omitempty"`
}

// StaticAvailability is the placeholder capacity policy: a non-empty
// skill means an agent is available, with fixed wait estimates. It is
// deliberately not a real capacity model; replace it when one exists.
type StaticAvailability struct{}

func (StaticAvailability) Available(skill string) bool { return skill != "" }

func (StaticAvailability) EstimatedWaitSeconds() int { return 30 }

func (StaticAvailability) QueueDepth() int { return 10 }

// QueueWaitSeconds is the fixed estimate served by the wait-time endpoint.
func (StaticAvailability) QueueWaitSeconds() int { return 60 }
