package domain

import (
	"context"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	EventButtonPressed EventType = "button.pressed"
	EventStateChanged  EventType = "state.changed"
	EventToggleFailed  EventType = "toggle.failed"
	EventScheduleFired EventType = "schedule.fired"
)

// EventSource names the control path that caused an event.
type EventSource string

const (
	SourceButton   EventSource = "button"
	SourcePoller   EventSource = "poller"
	SourceSchedule EventSource = "schedule"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    EventSource `json:"source,omitempty"`
	State     FilterState `json:"state,omitempty"`
	Detail    string      `json:"detail,omitempty"`
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// SubscribeAll registers a handler that receives every event.
	// Returns an unsubscribe function.
	SubscribeAll(handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}
