package middleware

import (
	"context"
	"time"

	"github.com/coderr/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// httpMetrics holds all HTTP-related metrics instruments.
type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	requestSize     *telemetry.Histogram
	responseSize    *telemetry.Histogram
	activeRequests  *telemetry.UpDownCounter
}

var sizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	requestSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size distribution in bytes",
		Unit:        "By",
		Boundaries:  sizeBuckets,
	})
	if err != nil {
		return nil, err
	}
	responseSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  sizeBuckets,
	})
	if err != nil {
		return nil, err
	}
	activeRequests, err := telemetry.NewUpDownCounter(meter,
		"http_server_active_requests", "Number of currently active HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestSize:     requestSize,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics records request count, latency, sizes and in-flight requests.
// A nil meter, or a failure to create the instruments, yields a pass-through middleware.
func HTTPMetrics(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	metrics, err := newHTTPMetrics(meter)
	if err != nil {
		if logger != nil {
			logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.activeRequests.Add(ctx, 1)
		c.Next()
		metrics.activeRequests.Add(ctx, -1)

		recordHTTPMetrics(ctx, metrics, c.Request.Method, routePattern(c), c.Writer.Status(),
			time.Since(start), c.Request.ContentLength, c.Writer.Size())
	}
}

// routePattern uses the matched route to keep label cardinality bounded
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

func recordHTTPMetrics(
	ctx context.Context,
	metrics *httpMetrics,
	method, route string,
	statusCode int,
	duration time.Duration,
	requestSize int64,
	responseSize int,
) {
	baseAttrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPRoute.String(route),
	}
	metrics.requestTotal.Inc(ctx, append(baseAttrs, telemetry.AttrHTTPStatusCode.Int(statusCode))...)
	metrics.requestDuration.RecordDuration(ctx, duration, baseAttrs...)

	if requestSize > 0 {
		metrics.requestSize.Record(ctx, float64(requestSize), baseAttrs...)
	}
	if responseSize > 0 {
		metrics.responseSize.Record(ctx, float64(responseSize), baseAttrs...)
	}
}
