package servicenow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ccc-bridge/internal/ccc"

	"github.com/google/uuid"
)

// Config identifies one ServiceNow instance.
type Config struct {
	InstanceURL string
}

// Adapter implements ccc.AgentService against the ServiceNow Virtual
// Agent integration API. Every operation posts one envelope to the same
// endpoint; the action code and message fields vary per operation.
type Adapter struct {
	url    string
	client *http.Client

	// newID is injectable for deterministic tests.
	newID func() string
}

func NewAdapter(cfg Config, client *http.Client) *Adapter {
	return &Adapter{
		url:    cfg.InstanceURL + "/api/sn_va_as_service/bot/integration",
		client: client,
		newID:  uuid.NewString,
	}
}

func (a *Adapter) Name() string { return "servicenow" }

func (a *Adapter) SupportsTypingSync() bool { return true }

func (a *Adapter) IsAvailable(skill string) bool {
	return ccc.StaticAvailability{}.Available(skill)
}

type requestEnvelope struct {
	RequestID        string            `json:"requestId,omitempty"`
	ClientSessionID  string            `json:"clientSessionId"`
	Action           string            `json:"action,omitempty"`
	ContextVariables *contextVariables `json:"contextVariables,omitempty"`
	Message          *outboundMessage  `json:"message,omitempty"`
	UserID           string            `json:"userId,omitempty"`
}

type contextVariables struct {
	MandatorySkills string `json:"LiveAgent_mandatory_skills"`
}

type outboundMessage struct {
	Text            string `json:"text"`
	Typed           bool   `json:"typed"`
	ClientMessageID string `json:"clientMessageId,omitempty"`
}

func (a *Adapter) messageRequestBody(msg ccc.Message) requestEnvelope {
	return requestEnvelope{
		RequestID:        a.newID(),
		ClientSessionID:  msg.ConversationID,
		ContextVariables: &contextVariables{MandatorySkills: msg.Skill},
		Message: &outboundMessage{
			Text:            msg.Content.Value,
			Typed:           true,
			ClientMessageID: msg.Content.ID,
		},
		UserID: msg.ConversationID,
	}
}

func (a *Adapter) startConversationRequestBody(msg ccc.Message) requestEnvelope {
	return requestEnvelope{
		RequestID:        a.newID(),
		ClientSessionID:  msg.ConversationID,
		Action:           outboundActionAgent,
		ContextVariables: &contextVariables{MandatorySkills: msg.Skill},
		Message: &outboundMessage{
			Text:            "",
			Typed:           true,
			ClientMessageID: a.newID(),
		},
		UserID: msg.ConversationID,
	}
}

func (a *Adapter) switchToAgentRequestBody(msg ccc.Message) requestEnvelope {
	return requestEnvelope{
		RequestID:        a.newID(),
		ClientSessionID:  msg.ConversationID,
		Action:           outboundActionAgent,
		ContextVariables: &contextVariables{MandatorySkills: msg.Skill},
		Message: &outboundMessage{
			Text:            msg.Content.Value,
			Typed:           true,
			ClientMessageID: msg.Content.ID,
		},
		UserID: msg.ConversationID,
	}
}

func (a *Adapter) endConversationRequestBody(conversationID string) requestEnvelope {
	return requestEnvelope{
		ClientSessionID: conversationID,
		Action:          outboundActionEnd,
		Message:         &outboundMessage{Text: "", Typed: true},
		UserID:          conversationID,
	}
}

func (a *Adapter) typingRequestBody(conversationID string, isTyping bool) requestEnvelope {
	action := outboundActionViewing
	if isTyping {
		action = outboundActionTyping
	}
	return requestEnvelope{
		RequestID:       a.newID(),
		ClientSessionID: conversationID,
		Action:          action,
		UserID:          conversationID,
	}
}

func (a *Adapter) SendMessage(ctx context.Context, msg ccc.Message) (ccc.SendResult, error) {
	return a.post(ctx, a.messageRequestBody(msg))
}

// StartConversation is two-phase: create the agent session shell, then
// hand the initial message to agent assignment with the same
// conversation id. Phase 2 never starts before phase 1 returned, and a
// phase-1 failure aborts the sequence.
func (a *Adapter) StartConversation(ctx context.Context, msg ccc.Message) (ccc.SendResult, error) {
	if _, err := a.post(ctx, a.startConversationRequestBody(msg)); err != nil {
		return ccc.SendResult{}, fmt.Errorf("start conversation phase 1: %w", err)
	}
	return a.post(ctx, a.switchToAgentRequestBody(msg))
}

func (a *Adapter) EndConversation(ctx context.Context, conversationID string) (ccc.SendResult, error) {
	return a.post(ctx, a.endConversationRequestBody(conversationID))
}

func (a *Adapter) SendTyping(ctx context.Context, conversationID string, isTyping bool) (ccc.SendResult, error) {
	if conversationID == "" {
		return ccc.SendResult{}, fmt.Errorf("%w: conversationId is required", ccc.ErrValidation)
	}
	return a.post(ctx, a.typingRequestBody(conversationID, isTyping))
}

func (a *Adapter) post(ctx context.Context, body requestEnvelope) (ccc.SendResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return ccc.SendResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return ccc.SendResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return ccc.SendResult{}, ccc.TransportErr("servicenow", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return ccc.SendResult{}, &ccc.UpstreamError{
			Platform: "servicenow",
			Status:   resp.StatusCode,
			Message:  string(raw),
		}
	}
	return ccc.SendResult{Status: resp.StatusCode, Body: string(raw)}, nil
}
