package flex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"ccc-bridge/internal/ccc"
)

const (
	defaultFlexAPIURL     = "https://flex-api.twilio.com/v1/Channels"
	defaultChatServiceURL = "https://chat.twilio.com/v2/Services"

	// chatUserName is the friendly name Flex agents see for the bridged
	// end user.
	chatUserName = "PS User"

	endChatNotice = "Automated message: USER LEFT CHAT."
)

// Config holds Flex endpoints plus the customer connection parameters.
// URLs default to the public Twilio endpoints and are overridable for
// tests.
type Config struct {
	Customer Customer

	FlexAPIURL     string
	ChatServiceURL string
}

func (c Config) withDefaults() Config {
	out := c
	if out.FlexAPIURL == "" {
		out.FlexAPIURL = defaultFlexAPIURL
	}
	if out.ChatServiceURL == "" {
		out.ChatServiceURL = defaultChatServiceURL
	}
	return out
}

// Adapter implements ccc.AgentService against the Twilio Flex chat
// REST API. Requests are form-encoded and basic-authenticated with the
// customer's account credentials.
type Adapter struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

func NewAdapter(cfg Config, client *http.Client, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{cfg: cfg.withDefaults(), client: client, log: log}
}

func (a *Adapter) Name() string { return "flex" }

// SupportsTypingSync is false: the chat REST surface has no typing
// endpoint, and typing state only flows over the Flex websocket.
func (a *Adapter) SupportsTypingSync() bool { return false }

func (a *Adapter) IsAvailable(skill string) bool {
	return ccc.StaticAvailability{}.Available(skill)
}

func (a *Adapter) SendMessage(ctx context.Context, msg ccc.Message) (ccc.SendResult, error) {
	form := url.Values{}
	form.Set("Body", msg.Content.Value)
	form.Set("From", chatUserName)

	endpoint := fmt.Sprintf("%s/%s/Channels/%s/Messages",
		a.cfg.ChatServiceURL, a.cfg.Customer.ServiceSID, msg.ConversationID)
	return a.doForm(ctx, http.MethodPost, endpoint, form)
}

// StartConversation is two-phase: create the Flex channel, then rename
// it so the channel's unique name is the conversation id and later
// traffic can be correlated. Phase 2 only runs after phase 1 returned
// the new channel sid.
func (a *Adapter) StartConversation(ctx context.Context, msg ccc.Message) (ccc.SendResult, error) {
	form := url.Values{}
	form.Set("FlexFlowSid", a.cfg.Customer.FlexFlowSID)
	form.Set("Identity", msg.ConversationID)
	form.Set("ChatUserFriendlyName", chatUserName)
	form.Set("ChatFriendlyName", chatUserName)

	res, err := a.doForm(ctx, http.MethodPost, a.cfg.FlexAPIURL, form)
	if err != nil {
		return ccc.SendResult{}, fmt.Errorf("start conversation phase 1: %w", err)
	}

	var created struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal([]byte(res.Body), &created); err != nil || created.Sid == "" {
		return ccc.SendResult{}, fmt.Errorf("start conversation phase 1: channel sid missing in response")
	}

	rename := url.Values{}
	rename.Set("UniqueName", msg.ConversationID)
	endpoint := fmt.Sprintf("%s/%s/Channels/%s",
		a.cfg.ChatServiceURL, a.cfg.Customer.ServiceSID, created.Sid)
	return a.doForm(ctx, http.MethodPost, endpoint, rename)
}

// EndConversation notifies the agent and leaves the channel. The notice
// is fire-and-forget: its failure is logged and the leave call's result
// is the operation's result.
func (a *Adapter) EndConversation(ctx context.Context, conversationID string) (ccc.SendResult, error) {
	notice := url.Values{}
	notice.Set("Body", endChatNotice)
	notice.Set("From", chatUserName)
	noticeURL := fmt.Sprintf("%s/%s/Channels/%s/Messages",
		a.cfg.ChatServiceURL, a.cfg.Customer.ServiceSID, conversationID)

	noticeCtx := context.WithoutCancel(ctx)
	go func() {
		if _, err := a.doForm(noticeCtx, http.MethodPost, noticeURL, notice); err != nil {
			a.log.Error("flex end-chat notice failed", "conversation_id", conversationID, "err", err)
		}
	}()

	leaveURL := fmt.Sprintf("%s/%s/Channels/%s/Members/%s",
		a.cfg.ChatServiceURL, a.cfg.Customer.ServiceSID, conversationID, conversationID)
	return a.doForm(ctx, http.MethodDelete, leaveURL, nil)
}

// SendTyping only validates its input; see SupportsTypingSync.
func (a *Adapter) SendTyping(ctx context.Context, conversationID string, isTyping bool) (ccc.SendResult, error) {
	if conversationID == "" {
		return ccc.SendResult{}, fmt.Errorf("%w: conversationId is required", ccc.ErrValidation)
	}
	return ccc.SendResult{Status: http.StatusOK}, nil
}

func (a *Adapter) doForm(ctx context.Context, method, endpoint string, form url.Values) (ccc.SendResult, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return ccc.SendResult{}, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.SetBasicAuth(a.cfg.Customer.AccountSID, a.cfg.Customer.AuthToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return ccc.SendResult{}, ccc.TransportErr("flex", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return ccc.SendResult{}, &ccc.UpstreamError{
			Platform: "flex",
			Status:   resp.StatusCode,
			Message:  string(raw),
		}
	}
	return ccc.SendResult{Status: resp.StatusCode, Body: string(raw)}, nil
}
