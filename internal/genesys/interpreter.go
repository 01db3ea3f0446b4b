package genesys

import (
	"ccc-bridge/internal/ccc"

	"github.com/google/uuid"
)

// Interpreter classifies Genesys open-messaging webhooks. Same contract
// as the ServiceNow interpreter over a single-message schema: only the
// new-message signal exists.
type Interpreter struct{}

func (Interpreter) ElementCount(body WebhookBody) int { return 1 }

func (Interpreter) ConversationID(body WebhookBody) string { return body.Channel.To.ID }

func (Interpreter) HasNewMessageAction(body WebhookBody) bool {
	return body.Type == messageTypeText && body.Direction == directionOutbound && body.Text != ""
}

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

func (i Interpreter) MapToMessage(body WebhookBody, index int) (ccc.Message, bool) {
	if index != 0 || !i.HasNewMessageAction(body) {
		return ccc.Message{}, false
	}
	username := body.Channel.From.Nickname
	if username == "" {
		username = "agent"
	}
	return ccc.Message{
		ConversationID: body.Channel.To.ID,
		Content: ccc.Content{
			ID:    uuid.NewString(),
			Value: body.Text,
			Type:  ccc.MessageTypeText,
		},
		Sender: ccc.Sender{Username: username},
	}, true
}
