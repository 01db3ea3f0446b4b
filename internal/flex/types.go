package flex

// WebhookBody is the Twilio Flex chat webhook payload. Unlike the
// bundled ServiceNow body it carries a single implicit element: the
// message text itself.
type WebhookBody struct {
	Body       string `json:"Body"`
	From       string `json:"From"`
	ChannelSid string `json:"ChannelSid" binding:"required"`
	EventType  string `json:"EventType"`
}

// Customer holds the per-deployment Twilio connection parameters.
// Decoded once at the boundary and passed explicitly; adapters never
// read ambient request state.
type Customer struct {
	AccountSID  string `json:"accountSid"`
	AuthToken   string `json:"authToken"`
	ServiceSID  string `json:"serviceSid"`
	FlexFlowSID string `json:"flexFlowSid"`
}
