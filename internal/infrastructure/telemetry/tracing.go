package telemetry

import (
	"context"
	"errors"

	"github.com/coderr/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used by application services
const TracerName = "github.com/coderr/backend"

// StartServiceSpan starts a span named "{service}.{method}", e.g. "offer.create"
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span failed. Client-side domain errors (validation,
// not found, permission) are recorded as events only and keep the span OK.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code != "INTERNAL_ERROR" {
		span.AddEvent("domain_error", trace.WithAttributes(
			attribute.String("error.code", de.Code),
			attribute.String("error.message", de.Message),
		))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the active trace id, or "" outside a valid span
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// Span attribute keys used by services
const (
	SpanAttrUserID   = "coderr.user_id"
	SpanAttrOfferID  = "coderr.offer_id"
	SpanAttrOrderID  = "coderr.order_id"
	SpanAttrReviewID = "coderr.review_id"
)
