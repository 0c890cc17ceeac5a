package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartServiceSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "offer", "create", attribute.Int64(SpanAttrUserID, 7))
	assert.NotEmpty(t, TraceID(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "offer.create", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.Int64(SpanAttrUserID, 7))
}

func TestRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, domainSpan := StartServiceSpan(context.Background(), "review", "create")
	RecordError(domainSpan, shared.ErrForbidden)
	domainSpan.End()

	_, failedSpan := StartServiceSpan(context.Background(), "review", "list")
	RecordError(failedSpan, errors.New("connection reset"))
	failedSpan.End()

	_, okSpan := StartServiceSpan(context.Background(), "review", "delete")
	RecordError(okSpan, nil)
	okSpan.End()

	ended := recorder.Ended()
	require.Len(t, ended, 3)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "domain_error", ended[0].Events()[0].Name)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Empty(t, ended[2].Events())
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}
