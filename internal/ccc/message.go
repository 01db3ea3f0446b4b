package ccc

// MessageType discriminates canonical message content.
// Only text is exchanged today; the enum stays open for rich content later.
type MessageType string

const (
	MessageTypeText MessageType = "text"
)

// Message is the platform-agnostic representation of one chat message
// exchanged between an end user and an agent. Adapters translate it to
// and from their platform's wire shape; nothing retains it after the
// outbound call returns.
type Message struct {
	// ConversationID correlates all traffic for one end-user session.
	// Never regenerated mid-conversation.
	ConversationID string `json:"conversation_id"`

	// Skill is a routing hint (language, queue) for the destination
	// platform; may be empty.
	Skill string `json:"skill,omitempty"`

	Content Content `json:"message"`
	Sender  Sender  `json:"sender"`
}

// Content is the message body. ID must be unique within a conversation;
// adapters generate one when the source payload carries none.
type Content struct {
	ID    string      `json:"id"`
	Value string      `json:"value"`
	Type  MessageType `json:"type"`
}

// Sender identifies the human or agent party. Email is optional and
// platform-dependent.
type Sender struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
