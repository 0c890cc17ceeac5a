// Package middleware provides the gin middleware of the marketplace API.
package middleware

import (
	"net/http"

	"github.com/coderr/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig wraps otelgin. Spans are named after the route pattern
// ("GET /api/offers/:id/") and tagged with the request id once it exists.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithSpanNameFormatter(func(c *gin.Context) string {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			return c.Request.Method + " " + route
		}),
	)
}

// SpanEnricher runs inside the traced chain and, after the handler returns,
// annotates the span with the request id, the authenticated user and an error
// status for 4xx/5xx answers.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := c.GetString(RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if userID := GetJWTUserID(c); userID != 0 {
			span.SetAttributes(attribute.Int64(telemetry.SpanAttrUserID, int64(userID)))
		}

		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
