package testutil

import (
	"context"
	"sync"

	"github.com/coderr/backend/internal/domain/shared"
)

// EventRecorder keeps every event the bus delivers to it. With no types it
// subscribes to all events.
type EventRecorder struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

// NewEventRecorder creates a recorder for eventTypes
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{types: eventTypes}
}

func (r *EventRecorder) EventTypes() []string {
	return r.types
}

func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

// Events returns a copy of everything recorded so far
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

// Types lists the recorded event types in delivery order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

// Of returns the recorded events of one type
func (r *EventRecorder) Of(eventType string) []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range r.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// FailWith makes Handle return err from now on
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Reset forgets recorded events and any configured error
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.err = nil
}

// TestEvent is a bare domain event for bus tests
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent creates a TestEvent on a TestAggregate
func NewTestEvent(eventType string, aggregateID uint) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", aggregateID),
	}
}
