// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coderr/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/coderr/backend/internal/infrastructure/event"

// InMemoryEventBus dispatches events synchronously to the registered handlers.
// A failing or panicking handler is logged and does not stop the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	tracer   trace.Tracer
	running  atomic.Bool
	inflight sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
	b.running.Store(true)
	return b
}

// Publish delivers events in order. Events published after Stop are dropped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	b.inflight.Add(1)
	defer b.inflight.Done()

	for _, event := range events {
		b.publishOne(ctx, event)
	}
	return nil
}

func (b *InMemoryEventBus) publishOne(ctx context.Context, event shared.DomainEvent) {
	ctx, span := b.tracer.Start(ctx, "event.publish "+event.EventType(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("event.type", event.EventType()),
			attribute.String("event.id", event.EventID().String()),
			attribute.String("event.aggregate_type", event.AggregateType()),
			attribute.Int64("event.aggregate_id", int64(event.AggregateID())),
		),
	)
	defer span.End()

	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatch(ctx, handler, event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "handler failed")
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Uint("aggregate_id", event.AggregateID()),
				zap.Error(err),
			)
		}
	}
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty list subscribes to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start (re)enables delivery
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Int("handlers", len(b.registry.GetAllHandlers())))
	return nil
}

// Stop disables delivery and waits for in-flight publishes or ctx
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
