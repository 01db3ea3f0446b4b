package flex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ccc-bridge/internal/ccc"
)

type recordedCall struct {
	Method string
	Path   string
	Form   map[string]string
}

type recorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *recorder) add(req *http.Request) {
	_ = req.ParseForm()
	form := map[string]string{}
	for k := range req.PostForm {
		form[k] = req.PostForm.Get(k)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{Method: req.Method, Path: req.URL.Path, Form: form})
}

func (r *recorder) snapshot() []recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func testAdapter(t *testing.T, handler http.HandlerFunc) (*Adapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a := NewAdapter(Config{
		Customer: Customer{
			AccountSID:  "AC123",
			AuthToken:   "secret",
			ServiceSID:  "IS123",
			FlexFlowSID: "FO123",
		},
		FlexAPIURL:     srv.URL + "/v1/Channels",
		ChatServiceURL: srv.URL + "/v2/Services",
	}, srv.Client(), nil)
	return a, srv
}

func TestAdapter_SendMessage(t *testing.T) {
	rec := &recorder{}
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Fatalf("expected basic auth with account credentials")
		}
		rec.add(r)
		w.WriteHeader(http.StatusCreated)
	})

	msg := ccc.Message{
		ConversationID: "conv-1",
		Content:        ccc.Content{ID: "m1", Value: "hello agent", Type: ccc.MessageTypeText},
		Sender:         ccc.Sender{Username: "u1"},
	}
	res, err := a.SendMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.Status)
	}

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Path != "/v2/Services/IS123/Channels/conv-1/Messages" {
		t.Fatalf("unexpected path %q", calls[0].Path)
	}
	if calls[0].Form["Body"] != "hello agent" || calls[0].Form["From"] != "PS User" {
		t.Fatalf("unexpected form: %+v", calls[0].Form)
	}
}

func TestAdapter_StartConversationTwoPhase(t *testing.T) {
	rec := &recorder{}
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if r.URL.Path == "/v1/Channels" {
			_ = json.NewEncoder(w).Encode(map[string]string{"sid": "CH999"})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	msg := ccc.Message{ConversationID: "conv-1", Content: ccc.Content{ID: "m1", Value: "hi"}}
	if _, err := a.StartConversation(context.Background(), msg); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	calls := rec.snapshot()
	if len(calls) != 2 {
		t.Fatalf("expected two calls, got %d", len(calls))
	}
	if calls[0].Path != "/v1/Channels" || calls[0].Form["FlexFlowSid"] != "FO123" || calls[0].Form["Identity"] != "conv-1" {
		t.Fatalf("unexpected phase 1: %+v", calls[0])
	}
	if calls[1].Path != "/v2/Services/IS123/Channels/CH999" || calls[1].Form["UniqueName"] != "conv-1" {
		t.Fatalf("unexpected phase 2: %+v", calls[1])
	}
}

func TestAdapter_StartConversationPhase1FailureAborts(t *testing.T) {
	rec := &recorder{}
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		http.Error(w, "bad flow", http.StatusBadRequest)
	})

	_, err := a.StartConversation(context.Background(), ccc.Message{ConversationID: "conv-1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(rec.snapshot()) != 1 {
		t.Fatalf("expected phase 2 not attempted")
	}
}

func TestAdapter_EndConversationLeavesChannel(t *testing.T) {
	rec := &recorder{}
	noticeSeen := make(chan struct{})
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if r.Method == http.MethodPost {
			close(noticeSeen)
		}
		w.WriteHeader(http.StatusOK)
	})

	res, err := a.EndConversation(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Status)
	}

	// The notice is fire-and-forget; wait for it before inspecting calls.
	<-noticeSeen

	var sawLeave, sawNotice bool
	for _, call := range rec.snapshot() {
		switch {
		case call.Method == http.MethodDelete && call.Path == "/v2/Services/IS123/Channels/conv-1/Members/conv-1":
			sawLeave = true
		case call.Method == http.MethodPost && call.Form["Body"] == "Automated message: USER LEFT CHAT.":
			sawNotice = true
		}
	}
	if !sawLeave {
		t.Fatalf("expected leave-channel call")
	}
	if !sawNotice {
		t.Fatalf("expected end-chat notice")
	}
}

func TestAdapter_SendTyping(t *testing.T) {
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("expected no network call")
	})

	if a.SupportsTypingSync() {
		t.Fatalf("expected typing sync unsupported")
	}
	_, err := a.SendTyping(context.Background(), "", true)
	if !errors.Is(err, ccc.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := a.SendTyping(context.Background(), "conv-1", true); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
