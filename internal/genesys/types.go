package genesys

// WebhookBody is a Genesys Cloud open-messaging outbound event. One
// delivery carries one message; direction distinguishes agent traffic
// from echoes of our own inbound sends.
type WebhookBody struct {
	ID                string  `json:"id" binding:"required"`
	Channel           Channel `json:"channel"`
	Type              string  `json:"type"`
	Text              string  `json:"text"`
	Direction         string  `json:"direction"`
	OriginatingEntity string  `json:"originatingEntity"`
}

type Channel struct {
	ID        string      `json:"id"`
	Platform  string      `json:"platform"`
	Type      string      `json:"type"`
	To        Participant `json:"to"`
	From      Participant `json:"from"`
	Time      string      `json:"time"`
	MessageID string      `json:"messageId"`
}

type Participant struct {
	ID       string `json:"id"`
	IDType   string `json:"idType,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

const (
	messageTypeText   = "Text"
	directionOutbound = "Outbound"
)
