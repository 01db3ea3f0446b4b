package servicenow

import (
	"strings"

	"ccc-bridge/internal/ccc"

	"github.com/google/uuid"
)

// Interpreter classifies ServiceNow webhook bodies into canonical
// conversation events. All methods are pure predicates over the batched
// body sequence; absence is a boolean, never an error. Only misuse
// (extracting without a prior positive check) errors.
type Interpreter struct{}

func (Interpreter) ElementCount(body WebhookBody) int { return len(body.Body) }

func (Interpreter) ConversationID(body WebhookBody) string { return body.ClientSessionID }

// HasNewMessageAction reports whether any element carries agent-typed
// free text in the default text group.
func (Interpreter) HasNewMessageAction(body WebhookBody) bool {
	for _, item := range body.Body {
		if isNewMessage(item) {
			return true
		}
	}
	return false
}

// HasTypingIndicatorAction reports whether any element signals a
// typing-state transition, start or end.
func (i Interpreter) HasTypingIndicatorAction(body WebhookBody) bool {
	return i.TypingIndicatorIndex(body) >= 0
}

// TypingIndicatorIndex reports the position of the first typing
// element, -1 when absent.
func (Interpreter) TypingIndicatorIndex(body WebhookBody) int {
	for idx, item := range body.Body {
		if isTypingIndicator(item) {
			return idx
		}
	}
	return -1
}

// IsTyping reports whether the typing-indicator element signals start
// (true) or end (false). Callers must check HasTypingIndicatorAction
// first; without a typing element this is ccc.ErrPrecondition.
func (Interpreter) IsTyping(body WebhookBody) (bool, error) {
	for _, item := range body.Body {
		if isTypingIndicator(item) {
			return item.ActionType == actionTypeStartTyping, nil
		}
	}
	return false, ccc.ErrPrecondition
}

// HasEndConversationAction reports whether a system-action element is
// present that is not a participant-join notice. Joins share the
// discriminant with end signals and are excluded by message text: any
// system message containing "entered" is treated as a join. That
// wording match is fragile (locale dependent) but mirrors what the
// platform emits today.
func (i Interpreter) HasEndConversationAction(body WebhookBody) bool {
	return i.EndConversationIndex(body) >= 0
}

// EndConversationIndex reports the position of the first end-signal
// element, -1 when absent.
func (Interpreter) EndConversationIndex(body WebhookBody) int {
	for idx, item := range body.Body {
		if item.UIType == uiTypeActionMsg &&
			item.ActionType == actionTypeSystem &&
			!strings.Contains(item.Message, "entered") {
			return idx
		}
	}
	return -1
}

// HasWaitTime reports whether a wait-time spinner element is present.
func (i Interpreter) HasWaitTime(body WebhookBody) bool {
	return i.WaitTimeIndex(body) >= 0
}

// WaitTimeIndex reports the position of the first wait-time spinner
// element, -1 when absent.
func (Interpreter) WaitTimeIndex(body WebhookBody) int {
	for idx, item := range body.Body {
		if item.SpinnerType == spinnerTypeWaitTime {
			return idx
		}
	}
	return -1
}

// WaitTime extracts the estimated wait time. Callers must check
// HasWaitTime first; without a spinner element this is ccc.ErrNotFound.
func (Interpreter) WaitTime(body WebhookBody) (string, error) {
	for _, item := range body.Body {
		if item.SpinnerType == spinnerTypeWaitTime {
			return item.WaitTime, nil
		}
	}
	return "", ccc.ErrNotFound
}

// MapToMessage converts the element at index into a canonical message.
// ok is false for a non-message element; callers probe indices
// speculatively, so a miss is not an error.
func (Interpreter) MapToMessage(body WebhookBody, index int) (ccc.Message, bool) {
	if index < 0 || index >= len(body.Body) {
		return ccc.Message{}, false
	}
	item := body.Body[index]
	if !isNewMessage(item) {
		return ccc.Message{}, false
	}

	username := "agent"
	if item.AgentInfo != nil && item.AgentInfo.AgentName != "" {
		username = item.AgentInfo.AgentName
	}
	return ccc.Message{
		ConversationID: body.ClientSessionID,
		Content: ccc.Content{
			ID:    uuid.NewString(),
			Value: item.Value,
			Type:  ccc.MessageTypeText,
		},
		Sender: ccc.Sender{Username: username},
	}, true
}

func isNewMessage(item BodyElement) bool {
	return item.UIType == uiTypeOutputText && item.Group == groupDefaultText
}

func isTypingIndicator(item BodyElement) bool {
	if item.UIType != uiTypeActionMsg {
		return false
	}
	return item.ActionType == actionTypeStartTyping || item.ActionType == actionTypeEndTyping
}
