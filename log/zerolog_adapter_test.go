package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	return got
}

func TestZerologAdapter_TraceInfo(t *testing.T) {
	var buf bytes.Buffer
	l := &zerologAdapter{logger: newZerolog(&buf, zerolog.DebugLevel, false)}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	l.With(map[string]interface{}{"component": "test"}).
		Error(ctx, "boom", errors.New("broken"), map[string]interface{}{"status": 500})

	got := decodeLine(t, &buf)
	assert.Equal(t, "boom", got["message"])
	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "broken", got["error"])
	assert.Equal(t, "test", got["component"])
	assert.Equal(t, float64(500), got["status"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", got["span_id"])
}

func TestZerologAdapter_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	l := &zerologAdapter{logger: newZerolog(&buf, zerolog.InfoLevel, false)}

	l.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	l.Info(context.Background(), "shown")
	got := decodeLine(t, &buf)
	assert.Equal(t, "shown", got["message"])
	assert.NotContains(t, got, "trace_id")
}
