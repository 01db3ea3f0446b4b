package middlewareapi

import (
	"ccc-bridge/internal/ccc"

	"github.com/google/uuid"
)

// MapToMessage converts a gateway-originated message body into the
// canonical shape. messageID may be empty when the gateway did not
// assign one; a fresh id keeps per-conversation uniqueness.
func MapToMessage(content, senderID, conversationID, messageID string) ccc.Message {
	if messageID == "" {
		messageID = uuid.NewString()
	}
	return ccc.Message{
		ConversationID: conversationID,
		Content: ccc.Content{
			ID:    messageID,
			Value: content,
			Type:  ccc.MessageTypeText,
		},
		Sender: ccc.Sender{Username: senderID},
	}
}
