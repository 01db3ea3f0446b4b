package flex

import (
	"errors"
	"testing"

	"ccc-bridge/internal/ccc"
)

func TestInterpreter_NewMessage(t *testing.T) {
	var in Interpreter
	body := WebhookBody{Body: "hello", From: "beth", ChannelSid: "CH1"}

	if !in.HasNewMessageAction(body) {
		t.Fatalf("expected new message action")
	}
	if in.ConversationID(body) != "CH1" {
		t.Fatalf("unexpected conversation id %q", in.ConversationID(body))
	}

	msg, ok := in.MapToMessage(body, 0)
	if !ok {
		t.Fatalf("expected mapped message")
	}
	if msg.Content.Value != "hello" || msg.Sender.Username != "beth" || msg.ConversationID != "CH1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Content.ID == "" {
		t.Fatalf("expected generated message id")
	}
	if _, ok := in.MapToMessage(body, 1); ok {
		t.Fatalf("expected no message beyond index 0")
	}
}

func TestInterpreter_EmptyBodyIsNotAMessage(t *testing.T) {
	var in Interpreter
	body := WebhookBody{ChannelSid: "CH1"}

	if in.HasNewMessageAction(body) {
		t.Fatalf("expected no new message action")
	}
	if _, ok := in.MapToMessage(body, 0); ok {
		t.Fatalf("expected no mapped message")
	}
}

func TestInterpreter_DefaultSender(t *testing.T) {
	var in Interpreter
	msg, ok := in.MapToMessage(WebhookBody{Body: "hi", ChannelSid: "CH1"}, 0)
	if !ok || msg.Sender.Username != "agent" {
		t.Fatalf("expected fallback sender, got %+v", msg)
	}
}

func TestInterpreter_UnsupportedSignals(t *testing.T) {
	var in Interpreter
	body := WebhookBody{Body: "hi", ChannelSid: "CH1"}

	if in.HasTypingIndicatorAction(body) || in.HasEndConversationAction(body) || in.HasWaitTime(body) {
		t.Fatalf("expected typing, end and wait-time signals to be absent")
	}
	if _, err := in.IsTyping(body); !errors.Is(err, ccc.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if _, err := in.WaitTime(body); !errors.Is(err, ccc.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
