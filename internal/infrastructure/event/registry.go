package event

import (
	"context"
	"slices"
	"sync"

	"github.com/coderr/backend/internal/domain/shared"
)

// HandlerRegistry maps event types to handlers
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
	}
}

// Register adds handler for eventTypes, or for all events when none are given.
// Registering the same handler twice for a type is a no-op.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		if !slices.Contains(r.wildcard, handler) {
			r.wildcard = append(r.wildcard, handler)
		}
		return
	}
	for _, eventType := range eventTypes {
		if !slices.Contains(r.handlers[eventType], handler) {
			r.handlers[eventType] = append(r.handlers[eventType], handler)
		}
	}
}

// Unregister removes handler everywhere
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = slices.DeleteFunc(r.wildcard, func(h shared.EventHandler) bool { return h == handler })
	for eventType, handlers := range r.handlers {
		handlers = slices.DeleteFunc(handlers, func(h shared.EventHandler) bool { return h == handler })
		if len(handlers) == 0 {
			delete(r.handlers, eventType)
			continue
		}
		r.handlers[eventType] = handlers
	}
}

// GetHandlers returns the type-specific handlers followed by the wildcard ones
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(r.wildcard))
	result = append(result, typed...)
	return append(result, r.wildcard...)
}

// GetAllHandlers returns every distinct handler
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []shared.EventHandler
	add := func(h shared.EventHandler) {
		if !slices.Contains(result, h) {
			result = append(result, h)
		}
	}
	for _, h := range r.wildcard {
		add(h)
	}
	for _, handlers := range r.handlers {
		for _, h := range handlers {
			add(h)
		}
	}
	return result
}

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	Types []string
	Fn    func(ctx context.Context, event shared.DomainEvent) error
}

// Handle calls Fn
func (h *HandlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return h.Fn(ctx, event)
}

// EventTypes returns Types
func (h *HandlerFunc) EventTypes() []string {
	return h.Types
}
