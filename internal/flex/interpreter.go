package flex

import (
	"ccc-bridge/internal/ccc"

	"github.com/google/uuid"
)

// Interpreter classifies Flex chat webhooks. The payload is a
// single-field body, so the element sequence degenerates to one entry
// and only the new-message signal can ever be detected.
type Interpreter struct{}

func (Interpreter) ElementCount(body WebhookBody) int { return 1 }

func (Interpreter) ConversationID(body WebhookBody) string { return body.ChannelSid }

func (Interpreter) HasNewMessageAction(body WebhookBody) bool { return body.Body != "" }

func (Interpreter) HasTypingIndicatorAction(body WebhookBody) bool { return false }

func (Interpreter) IsTyping(body WebhookBody) (bool, error) {
	return false, ccc.ErrPrecondition
}

func (Interpreter) HasEndConversationAction(body WebhookBody) bool { return false }

func (Interpreter) HasWaitTime(body WebhookBody) bool { return false }

func (Interpreter) TypingIndicatorIndex(body WebhookBody) int { return -1 }

func (Interpreter) EndConversationIndex(body WebhookBody) int { return -1 }

func (Interpreter) WaitTimeIndex(body WebhookBody) int { return -1 }

func (Interpreter) WaitTime(body WebhookBody) (string, error) {
	return "", ccc.ErrNotFound
}

func (Interpreter) MapToMessage(body WebhookBody, index int) (ccc.Message, bool) {
	if index != 0 || body.Body == "" {
		return ccc.Message{}, false
	}
	username := body.From
	if username == "" {
		username = "agent"
	}
	return ccc.Message{
		ConversationID: body.ChannelSid,
		Content: ccc.Content{
			ID:    uuid.NewString(),
			Value: body.Body,
			Type:  ccc.MessageTypeText,
		},
		Sender: ccc.Sender{Username: username},
	}, true
}
