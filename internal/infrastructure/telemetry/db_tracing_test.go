package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestDBTracingPlugin_Register(t *testing.T) {
	recorder := installRecorder(t)
	db := openTestDB(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBName: "coderr"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx, span := otel.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)
	span.End()

	var annotated bool
	for _, s := range recorder.Ended() {
		if s.Name() == "parent" {
			continue
		}
		assert.Equal(t, span.SpanContext().TraceID(), s.SpanContext().TraceID())
		for _, attr := range s.Attributes() {
			if attr.Key == "db.rows_affected" && attr.Value.AsInt64() == 1 {
				annotated = true
			}
		}
	}
	assert.True(t, annotated, "no db span carries db.rows_affected")
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	recorder := installRecorder(t)
	db := openTestDB(t)

	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop()).Register(db))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)

	assert.Empty(t, recorder.Ended())
}
