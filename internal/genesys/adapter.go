package genesys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ccc-bridge/internal/ccc"
)

// Config identifies one Genesys Cloud org and its open-messaging
// integration.
type Config struct {
	OAuthURL      string
	APIURL        string
	ClientID      string
	ClientSecret  string
	GrantType     string
	IntegrationID string
}

func (c Config) withDefaults() Config {
	out := c
	if out.GrantType == "" {
		out.GrantType = "client_credentials"
	}
	return out
}

// Adapter implements ccc.AgentService against the Genesys Cloud open
// messaging API. Every operation acquires a fresh client-credentials
// token first; tokens are not cached so a revoked credential fails the
// very next call instead of lingering until expiry.
type Adapter struct {
	cfg    Config
	client *http.Client

	now func() time.Time
}

func NewAdapter(cfg Config, client *http.Client) *Adapter {
	return &Adapter{cfg: cfg.withDefaults(), client: client, now: time.Now}
}

func (a *Adapter) Name() string { return "genesys" }

// SupportsTypingSync is false: open messaging has no agent-facing
// typing event, so typing sync is disabled for this platform.
func (a *Adapter) SupportsTypingSync() bool { return false }

func (a *Adapter) IsAvailable(skill string) bool {
	return ccc.StaticAvailability{}.Available(skill)
}

type inboundOpenMessage struct {
	Channel   inboundChannel `json:"channel"`
	Type      string         `json:"type"`
	Text      string         `json:"text"`
	Direction string         `json:"direction"`
}

type inboundChannel struct {
	Platform  string             `json:"platform"`
	Type      string             `json:"type"`
	MessageID string             `json:"messageId,omitempty"`
	To        inboundParticipant `json:"to"`
	From      inboundParticipant `json:"from"`
	Time      string             `json:"time"`
}

type inboundParticipant struct {
	ID       string `json:"id"`
	IDType   string `json:"idType,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

func (a *Adapter) inboundMessageBody(msg ccc.Message, text string) inboundOpenMessage {
	return inboundOpenMessage{
		Channel: inboundChannel{
			Platform:  "Open",
			Type:      "Private",
			MessageID: msg.Content.ID,
			To:        inboundParticipant{ID: a.cfg.IntegrationID},
			From: inboundParticipant{
				ID:       msg.ConversationID,
				IDType:   "Opaque",
				Nickname: msg.Sender.Username,
			},
			Time: a.now().UTC().Format(time.RFC3339),
		},
		Type:      messageTypeText,
		Text:      text,
		Direction: "Inbound",
	}
}

func (a *Adapter) SendMessage(ctx context.Context, msg ccc.Message) (ccc.SendResult, error) {
	return a.postInbound(ctx, a.inboundMessageBody(msg, msg.Content.Value))
}

// StartConversation routes the first message through the open-messaging
// inbound endpoint; Genesys creates the conversation and queues it from
// the integration's routing configuration, so no separate session
// bootstrap call exists on this platform.
func (a *Adapter) StartConversation(ctx context.Context, msg ccc.Message) (ccc.SendResult, error) {
	return a.postInbound(ctx, a.inboundMessageBody(msg, msg.Content.Value))
}

func (a *Adapter) EndConversation(ctx context.Context, conversationID string) (ccc.SendResult, error) {
	msg := ccc.Message{
		ConversationID: conversationID,
		Sender:         ccc.Sender{Username: "system"},
	}
	return a.postInbound(ctx, a.inboundMessageBody(msg, "Automated message: USER LEFT CHAT."))
}

// SendTyping only validates its input; see SupportsTypingSync.
func (a *Adapter) SendTyping(ctx context.Context, conversationID string, isTyping bool) (ccc.SendResult, error) {
	if conversationID == "" {
		return ccc.SendResult{}, fmt.Errorf("%w: conversationId is required", ccc.ErrValidation)
	}
	return ccc.SendResult{Status: http.StatusOK}, nil
}

func (a *Adapter) postInbound(ctx context.Context, body inboundOpenMessage) (ccc.SendResult, error) {
	token, err := a.fetchToken(ctx)
	if err != nil {
		return ccc.SendResult{}, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ccc.SendResult{}, err
	}
	endpoint := a.cfg.APIURL + "/api/v2/conversations/messages/inbound/open"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ccc.SendResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return ccc.SendResult{}, ccc.TransportErr("genesys", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return ccc.SendResult{}, &ccc.UpstreamError{
			Platform: "genesys",
			Status:   resp.StatusCode,
			Message:  string(raw),
		}
	}
	return ccc.SendResult{Status: resp.StatusCode, Body: string(raw)}, nil
}

func (a *Adapter) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", a.cfg.GrantType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.OAuthURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", ccc.TransportErr("genesys", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &ccc.UpstreamError{
			Platform: "genesys",
			Status:   resp.StatusCode,
			Message:  string(raw),
		}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil || tok.AccessToken == "" {
		return "", fmt.Errorf("genesys: token response missing access_token")
	}
	return tok.AccessToken, nil
}
