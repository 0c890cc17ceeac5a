package event

import (
	"context"
	"testing"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := &recordingHandler{}
	wildcard := &recordingHandler{}

	registry.Register(typed, "OfferCreated", "OfferDeleted")
	registry.Register(typed, "OfferCreated")
	registry.Register(wildcard)

	handlers := registry.GetHandlers("OfferCreated")
	require.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	assert.Len(t, registry.GetHandlers("Unknown"), 1)
	assert.Len(t, registry.GetAllHandlers(), 2)

	registry.Unregister(typed)
	assert.Len(t, registry.GetHandlers("OfferDeleted"), 1)
	assert.Len(t, registry.GetAllHandlers(), 1)
}

func TestHandlerFunc(t *testing.T) {
	var got shared.DomainEvent
	h := &HandlerFunc{
		Types: []string{"UserRegistered"},
		Fn: func(_ context.Context, e shared.DomainEvent) error {
			got = e
			return nil
		},
	}
	event := newTestEvent("UserRegistered", 3)

	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, []string{"UserRegistered"}, h.EventTypes())
	assert.Same(t, event, got)
}
