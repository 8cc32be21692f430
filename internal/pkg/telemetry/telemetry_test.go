package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/farroshouse/ordering/internal/pkg/reqctx"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "storefront", slog.LevelInfo)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = reqctx.WithRequestID(ctx, "req-1")
	ctx = reqctx.WithSessionID(ctx, "sess-1")

	log.With("component", "cart").InfoContext(ctx, "item added")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "item added", rec["msg"])
	assert.Equal(t, "storefront", rec["service"])
	assert.Equal(t, "cart", rec["component"])
	assert.Equal(t, traceID.String(), rec["trace_id"])
	assert.Equal(t, spanID.String(), rec["span_id"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "sess-1", rec["cart_session"])
}

func TestContextHandler_NoIDs(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "payment-proxy", slog.LevelWarn).InfoContext(context.Background(), "dropped")
	assert.Empty(t, buf.String())

	NewLogger(&buf, "payment-proxy", slog.LevelWarn).WarnContext(context.Background(), "kept")
	assert.NotContains(t, buf.String(), "trace_id")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "collector:4317", stripScheme("http://collector:4317"))
	assert.Equal(t, "collector:4317", stripScheme("https://collector:4317"))
	assert.Equal(t, "collector:4317", stripScheme("collector:4317"))
}

func TestSetupTracer_NoEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	shutdown, err := SetupTracer(context.Background(), "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
