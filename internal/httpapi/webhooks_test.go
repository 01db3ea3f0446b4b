package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccc-bridge/internal/agentfactory"
	"ccc-bridge/internal/audit"
	"ccc-bridge/internal/settings"
)

// upstreamCall is one outbound envelope the fake ServiceNow instance saw.
type upstreamCall struct {
	Action  string `json:"action"`
	Message *struct {
		Text string `json:"text"`
	} `json:"message"`
	ClientSessionID string `json:"clientSessionId"`
}

type upstream struct {
	srv   *httptest.Server
	calls []upstreamCall
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call upstreamCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		u.calls = append(u.calls, call)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newWebhookRouter(t *testing.T, u *upstream) (*gin.Engine, *audit.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := settings.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), settings.Settings{
		IntegrationName:   agentfactory.IntegrationServiceNow,
		IntegrationFields: map[string]string{"instanceUrl": u.srv.URL},
	}))

	repo := audit.NewMemoryRepo()
	h := WebhookHandlers{
		Factory: agentfactory.New(store, u.srv.Client(), nil),
		Audit:   audit.NewService(repo),
	}

	r := gin.New()
	r.POST("/servicenow/webhook", h.ServiceNow)
	r.POST("/flex/webhook", h.Flex)
	r.POST("/genesys/webhook", h.Genesys)
	return r, repo
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func serviceNowPayload(body []map[string]any) map[string]any {
	return map[string]any{
		"requestId":       "req-1",
		"clientSessionId": "sess-1",
		"userId":          "user-1",
		"message":         map[string]any{"text": "", "typed": true},
		"score":           1.0,
		"body":            body,
	}
}

func decodeBatch(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var batch []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	return batch
}

func TestServiceNowWebhook_NewMessage(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{
		{"uiType": "OutputText", "group": "DefaultText", "value": "hi"},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	batch := decodeBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, "new_message", batch[0]["event"])
	assert.Equal(t, "ok", batch[0]["status"])
	assert.Equal(t, "sess-1", batch[0]["conversationId"])

	require.Len(t, u.calls, 1)
	require.NotNil(t, u.calls[0].Message)
	assert.Equal(t, "hi", u.calls[0].Message.Text)
	assert.Equal(t, "sess-1", u.calls[0].ClientSessionID)
}

func TestServiceNowWebhook_TypingOnly(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{
		{"uiType": "ActionMsg", "actionType": "StartTypingIndicator"},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	batch := decodeBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, "typing_indicator", batch[0]["event"])
	assert.Equal(t, "ok", batch[0]["status"])

	require.Len(t, u.calls, 1)
	assert.Equal(t, "TYPING", u.calls[0].Action)
}

func TestServiceNowWebhook_TypingAndEnd(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{
		{"uiType": "ActionMsg", "actionType": "EndTypingIndicator"},
		{"uiType": "ActionMsg", "actionType": "System", "message": "The chat has ended."},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	batch := decodeBatch(t, w)
	require.Len(t, batch, 2)
	assert.Equal(t, "typing_indicator", batch[0]["event"])
	assert.Equal(t, "end_conversation", batch[1]["event"])

	require.Len(t, u.calls, 2)
	assert.Equal(t, "VIEWING", u.calls[0].Action)
	assert.Equal(t, "END_CONVERSATION", u.calls[1].Action)
}

func TestServiceNowWebhook_EndBeforeTyping(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{
		{"uiType": "ActionMsg", "actionType": "System", "message": "The chat has ended."},
		{"uiType": "ActionMsg", "actionType": "StartTypingIndicator"},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	batch := decodeBatch(t, w)
	require.Len(t, batch, 2)
	assert.Equal(t, "end_conversation", batch[0]["event"])
	assert.Equal(t, "typing_indicator", batch[1]["event"])

	require.Len(t, u.calls, 2)
	assert.Equal(t, "END_CONVERSATION", u.calls[0].Action)
	assert.Equal(t, "TYPING", u.calls[1].Action)
}

func TestServiceNowWebhook_WaitTime(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{
		{"uiType": "ActionMsg", "spinnerType": "wait_time", "waitTime": "120"},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	batch := decodeBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, "wait_time", batch[0]["event"])
	assert.Equal(t, "120", batch[0]["waitTime"])
	assert.Empty(t, u.calls)
}

func TestServiceNowWebhook_EmptyBodyIsAnEmptyBatch(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBatch(t, w), 0)
	assert.Empty(t, u.calls)
}

func TestServiceNowWebhook_MissingRequiredFields(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", map[string]any{"body": []any{}})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, u.calls)
}

func TestServiceNowWebhook_AdapterFailureIsAFailedEntry(t *testing.T) {
	u := newUpstream(t)
	r, _ := newWebhookRouter(t, u)
	u.srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{
		{"uiType": "OutputText", "group": "DefaultText", "value": "hi"},
	}))

	require.Equal(t, http.StatusOK, w.Code)
	batch := decodeBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, "failed", batch[0]["status"])
	assert.NotEmpty(t, batch[0]["error"])
}

func TestServiceNowWebhook_RecordsAudit(t *testing.T) {
	u := newUpstream(t)
	r, repo := newWebhookRouter(t, u)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload([]map[string]any{
		{"uiType": "OutputText", "group": "DefaultText", "value": "hi"},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	deliveries := repo.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "servicenow", deliveries[0].Source)
	assert.Equal(t, "sess-1", deliveries[0].ConversationID)
}

func TestWebhook_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := WebhookHandlers{
		Factory: agentfactory.New(settings.NewMemoryStore(), &http.Client{}, nil),
	}
	r := gin.New()
	r.POST("/servicenow/webhook", h.ServiceNow)

	w := postJSON(r, "/servicenow/webhook", serviceNowPayload(nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFlexWebhook_NewMessage(t *testing.T) {
	var messageCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		messageCalls++
		_ = r.ParseForm()
		if got := r.PostForm.Get("Body"); got != "hello" {
			t.Errorf("unexpected body %q", got)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	gin.SetMode(gin.TestMode)
	store := settings.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), settings.Settings{
		IntegrationName: agentfactory.IntegrationFlex,
		IntegrationFields: map[string]string{
			"accountSid": "AC1", "authToken": "tok",
			"serviceSid": "IS1", "flexFlowSid": "FO1",
			"flexApiUrl": srv.URL, "chatServiceUrl": srv.URL,
		},
	}))
	h := WebhookHandlers{Factory: agentfactory.New(store, srv.Client(), nil)}
	r := gin.New()
	r.POST("/flex/webhook", h.Flex)

	w := postJSON(r, "/flex/webhook", map[string]any{
		"ChannelSid": "CH1",
		"Body":       "hello",
		"From":       "beth",
	})

	require.Equal(t, http.StatusOK, w.Code)
	batch := decodeBatch(t, w)
	require.Len(t, batch, 1)
	assert.Equal(t, "new_message", batch[0]["event"])
	assert.Equal(t, "CH1", batch[0]["conversationId"])
	assert.Equal(t, 1, messageCalls)
}
