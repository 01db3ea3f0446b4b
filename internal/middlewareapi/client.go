package middlewareapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ccc-bridge/internal/ccc"
	"ccc-bridge/internal/settings"
)

// Config locates the gateway's middleware API.
type Config struct {
	URL   string
	Token string
}

// Client talks to the canonical gateway: settings round-trips and
// conversation history. All calls are bearer-authenticated with the
// configured API token.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

func (c *Client) PutSettings(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return settings.Settings{}, err
	}
	var out settings.Settings
	if err := c.do(ctx, http.MethodPut, "/contactCenter/v1/settings", payload, &out); err != nil {
		return settings.Settings{}, err
	}
	return out, nil
}

func (c *Client) GetSettings(ctx context.Context) (settings.Settings, error) {
	var out settings.Settings
	if err := c.do(ctx, http.MethodGet, "/contactCenter/v1/settings", nil, &out); err != nil {
		return settings.Settings{}, err
	}
	return out, nil
}

// HistoryMessage is one entry of a conversation transcript.
type HistoryMessage struct {
	Content  string `json:"content"`
	ID       string `json:"id"`
	SenderID string `json:"senderId"`
	SentDate string `json:"sentDate"`
	Side     string `json:"side"`
}

type historyResponse struct {
	Messages   []HistoryMessage `json:"messages"`
	Pagination struct {
		Page       int `json:"page"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

// History fetches the transcript for one conversation, newest first.
func (c *Client) History(ctx context.Context, conversationID string) ([]HistoryMessage, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversationId is required", ccc.ErrValidation)
	}
	var out historyResponse
	path := "/contactCenter/v1/conversations/" + conversationID + "/history"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ccc.TransportErr("middleware-api", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &ccc.UpstreamError{
			Platform: "middleware-api",
			Status:   resp.StatusCode,
			Message:  string(raw),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("middleware-api: decode %s %s: %w", method, path, err)
	}
	return nil
}
