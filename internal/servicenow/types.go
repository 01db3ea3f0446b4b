package servicenow

// WebhookBody is the ServiceNow Virtual Agent webhook payload. One
// delivery batches zero or more heterogeneous body elements; unrelated
// signals (typing started, conversation ended) can arrive in the same
// call, so consumers must scan the whole sequence.
type WebhookBody struct {
	RequestID       string          `json:"requestId" binding:"required"`
	ClientSessionID string          `json:"clientSessionId" binding:"required"`
	NowSessionID    string          `json:"nowSessionId"`
	Message         *WebhookMessage `json:"message" binding:"required"`
	UserID          string          `json:"userId" binding:"required"`
	Body            []BodyElement   `json:"body"`
	AgentChat       bool            `json:"agentChat"`
	Completed       bool            `json:"completed"`
	Score           *float64        `json:"score" binding:"required"`
}

type WebhookMessage struct {
	Text            string `json:"text"`
	Typed           bool   `json:"typed"`
	ClientMessageID string `json:"clientMessageId"`
}

// BodyElement is one discriminated sub-object within the batched body.
// UIType is the discriminant; the remaining fields are type-specific.
type BodyElement struct {
	UIType      string     `json:"uiType"`
	ActionType  string     `json:"actionType,omitempty"`
	Group       string     `json:"group,omitempty"`
	Value       string     `json:"value,omitempty"`
	Message     string     `json:"message,omitempty"`
	SpinnerType string     `json:"spinnerType,omitempty"`
	WaitTime    string     `json:"waitTime,omitempty"`
	AgentInfo   *AgentInfo `json:"agentInfo,omitempty"`
}

type AgentInfo struct {
	AgentName string `json:"agentName"`
	SessionID string `json:"sessionId,omitempty"`
}

const (
	uiTypeOutputText = "OutputText"
	uiTypeActionMsg  = "ActionMsg"

	groupDefaultText = "DefaultText"

	actionTypeSystem      = "System"
	actionTypeStartTyping = "StartTypingIndicator"
	actionTypeEndTyping   = "EndTypingIndicator"

	spinnerTypeWaitTime = "wait_time"
)

// Outbound action codes understood by the Virtual Agent integration API.
const (
	outboundActionAgent   = "AGENT"
	outboundActionEnd     = "END_CONVERSATION"
	outboundActionTyping  = "TYPING"
	outboundActionViewing = "VIEWING"
)
