package dispatch

import (
	"context"
	"log/slog"
	"sort"

	"ccc-bridge/internal/audit"
	"ccc-bridge/internal/ccc"
)

// EventKind names one canonical conversation event detected in an
// inbound webhook.
type EventKind string

const (
	EventNewMessage      EventKind = "new_message"
	EventTypingIndicator EventKind = "typing_indicator"
	EventEndConversation EventKind = "end_conversation"
	EventWaitTime        EventKind = "wait_time"
)

// Result is one entry of the webhook response batch: the outcome of one
// detected event.
type Result struct {
	Event          EventKind `json:"event"`
	ConversationID string    `json:"conversationId"`
	Status         string    `json:"status"`
	WaitTime       string    `json:"waitTime,omitempty"`
	Error          string    `json:"error,omitempty"`
}

const (
	statusOK      = "ok"
	statusFailed  = "failed"
	statusSkipped = "skipped"
)

// Interpreter is the per-platform pure classifier over a raw webhook
// body. Predicates are independent probes: one delivery may carry
// several unrelated signals, so callers must not assume mutual
// exclusivity. Absence is a boolean, never an error; only extraction
// without a prior positive check errors.
type Interpreter[B any] interface {
	ElementCount(body B) int
	ConversationID(body B) string

	HasNewMessageAction(body B) bool
	HasTypingIndicatorAction(body B) bool
	// IsTyping requires a prior positive HasTypingIndicatorAction.
	IsTyping(body B) (bool, error)
	HasEndConversationAction(body B) bool
	HasWaitTime(body B) bool
	// WaitTime requires a prior positive HasWaitTime.
	WaitTime(body B) (string, error)

	// TypingIndicatorIndex, EndConversationIndex and WaitTimeIndex
	// report the position of the first element carrying that signal,
	// -1 when none does. The orchestrator uses them to keep result
	// entries in body-element order.
	TypingIndicatorIndex(body B) int
	EndConversationIndex(body B) int
	WaitTimeIndex(body B) int

	// MapToMessage probes the element at index; ok is false for a
	// non-message element.
	MapToMessage(body B, index int) (ccc.Message, bool)
}

// Orchestrator turns one inbound webhook delivery into zero or more
// outbound agent-service actions and collects one result per event.
//
// Ordering: one entry per message element plus at most one entry per
// synthesized kind (typing, end-conversation, wait-time), all emitted
// in body-element order. A synthesized kind sits at its first
// qualifying element's position even when several elements qualify.
type Orchestrator[B any] struct {
	Source      string
	Interpreter Interpreter[B]

	// Audit is optional; recording failures are logged, never surfaced.
	Audit *audit.Service
	Log   *slog.Logger
}

// plannedEvent is one detected event with the body position it was
// found at, before any outbound action ran.
type plannedEvent struct {
	pos  int
	kind EventKind
	msg  ccc.Message
}

func (o Orchestrator[B]) Dispatch(ctx context.Context, svc ccc.AgentService, body B) []Result {
	log := o.Log
	if log == nil {
		log = slog.Default()
	}
	conversationID := o.Interpreter.ConversationID(body)

	plan := make([]plannedEvent, 0, 2)
	if o.Interpreter.HasNewMessageAction(body) {
		for i := 0; i < o.Interpreter.ElementCount(body); i++ {
			if msg, ok := o.Interpreter.MapToMessage(body, i); ok {
				plan = append(plan, plannedEvent{pos: i, kind: EventNewMessage, msg: msg})
			}
		}
	}
	if o.Interpreter.HasTypingIndicatorAction(body) {
		plan = append(plan, plannedEvent{pos: o.Interpreter.TypingIndicatorIndex(body), kind: EventTypingIndicator})
	}
	if o.Interpreter.HasEndConversationAction(body) {
		plan = append(plan, plannedEvent{pos: o.Interpreter.EndConversationIndex(body), kind: EventEndConversation})
	}
	if o.Interpreter.HasWaitTime(body) {
		plan = append(plan, plannedEvent{pos: o.Interpreter.WaitTimeIndex(body), kind: EventWaitTime})
	}
	sort.SliceStable(plan, func(i, j int) bool { return plan[i].pos < plan[j].pos })

	results := make([]Result, 0, len(plan))
	for _, ev := range plan {
		results = append(results, o.execute(ctx, log, svc, conversationID, body, ev))
	}

	o.record(ctx, log, conversationID, results)
	return results
}

func (o Orchestrator[B]) execute(ctx context.Context, log *slog.Logger, svc ccc.AgentService, conversationID string, body B, ev plannedEvent) Result {
	entry := Result{Event: ev.kind, ConversationID: conversationID, Status: statusOK}

	switch ev.kind {
	case EventNewMessage:
		if _, err := svc.SendMessage(ctx, ev.msg); err != nil {
			log.Error("send message failed", "platform", svc.Name(), "err", err)
			entry.Status = statusFailed
			entry.Error = err.Error()
		}

	case EventTypingIndicator:
		isTyping, err := o.Interpreter.IsTyping(body)
		switch {
		case err != nil:
			entry.Status = statusFailed
			entry.Error = err.Error()
		case !svc.SupportsTypingSync():
			log.Info("typing sync not supported, skipping", "platform", svc.Name())
			entry.Status = statusSkipped
		default:
			if _, err := svc.SendTyping(ctx, conversationID, isTyping); err != nil {
				log.Error("typing sync failed", "platform", svc.Name(), "err", err)
				entry.Status = statusFailed
				entry.Error = err.Error()
			}
		}

	case EventEndConversation:
		if _, err := svc.EndConversation(ctx, conversationID); err != nil {
			log.Error("end conversation failed", "platform", svc.Name(), "err", err)
			entry.Status = statusFailed
			entry.Error = err.Error()
		}

	case EventWaitTime:
		wt, err := o.Interpreter.WaitTime(body)
		if err != nil {
			entry.Status = statusFailed
			entry.Error = err.Error()
		} else {
			entry.WaitTime = wt
		}
	}

	return entry
}

func (o Orchestrator[B]) record(ctx context.Context, log *slog.Logger, conversationID string, results []Result) {
	if o.Audit == nil {
		return
	}
	outcomes := make([]audit.Outcome, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, audit.Outcome{Event: string(r.Event), Status: r.Status, Error: r.Error})
	}
	if err := o.Audit.Record(ctx, audit.Delivery{
		Source:         o.Source,
		ConversationID: conversationID,
		Outcomes:       outcomes,
	}); err != nil {
		log.Warn("dispatch audit record failed", "source", o.Source, "err", err)
	}
}
