package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coderr/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prevTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prevTP)
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.FailNow(t, "span not found", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func newTracedRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}))
	router.Use(SpanEnricher())
	router.GET("/api/offers/:id/", handler)
	return router
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_RouteSpanName(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/offers/7/", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(t, sr, "GET /api/offers/:id/")
	v, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-abc", v.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanEnricher_UserAndErrorStatus(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(func(c *gin.Context) {
		c.Set(JWTUserIDKey, uint(9))
		c.Status(http.StatusForbidden)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/offers/7/", nil))

	span := findSpan(t, sr, "GET /api/offers/:id/")
	v, ok := spanAttr(span, telemetry.SpanAttrUserID)
	require.True(t, ok)
	assert.Equal(t, int64(9), v.AsInt64())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "Forbidden", span.Status().Description)
}

func TestSpanEnricher_WithoutSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanEnricher())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
