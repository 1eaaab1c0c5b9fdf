// Package events provides event bus infrastructure for decoupled,
// event-driven communication between modules.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event. The name keys handler
// registration and must stay stable across releases.
type Event interface {
	EventName() string
}

// BaseEvent carries the publication timestamp shared by all events. Embed it
// in concrete event structs.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes published events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to registered handlers.
type Bus interface {
	// Publish dispatches the event asynchronously; handler errors are logged,
	// never returned to the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync dispatches the event and waits for every handler, returning
	// the first handler error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the name an Event reports from
	// EventName().
	Subscribe(eventName string, handler Handler)
}
