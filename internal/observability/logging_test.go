package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TestParseLevel maps configuration names to slog levels.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{name: "debug", level: "debug", want: slog.LevelDebug},
		{name: "info", level: "info", want: slog.LevelInfo},
		{name: "warn", level: "warn", want: slog.LevelWarn},
		{name: "error", level: "error", want: slog.LevelError},
		{name: "unknown falls back to info", level: "verbose", want: slog.LevelInfo},
		{name: "empty falls back to info", level: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.level))
		})
	}
}

// TestNewLogger_TextFormat emits key=value lines.
func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "text")

	logger.Info("comparison run starting", "run_id", "abc123")

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "comparison run starting")
	assert.Contains(t, out, "run_id=abc123")
}

// TestNewLogger_JSONFormat emits parseable JSON lines.
func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Info("comparison run starting", "run_id", "abc123")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "comparison run starting", entry["msg"])
	assert.Equal(t, "abc123", entry["run_id"])
}

// TestNewLogger_LevelFiltering drops records below the configured level.
func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "text")

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

// TestTraceContextHandler_AddsSpanIDs correlates records with the
// active span.
func TestTraceContextHandler_AddsSpanIDs(t *testing.T) {
	// Given a logger and a real span in the context.
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "text")

	provider := sdktrace.NewTracerProvider()
	defer provider.Shutdown(context.Background())
	ctx, span := provider.Tracer("test").Start(context.Background(), "run")

	// When a record is emitted under the span.
	logger.InfoContext(ctx, "interaction recorded")
	span.End()

	// Then the record carries the span's identifiers.
	out := buf.String()
	assert.Contains(t, out, "trace_id="+span.SpanContext().TraceID().String())
	assert.Contains(t, out, "span_id="+span.SpanContext().SpanID().String())
}

// TestTraceContextHandler_NoSpanNoIDs leaves plain records untouched.
func TestTraceContextHandler_NoSpanNoIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "text")

	logger.InfoContext(context.Background(), "interaction recorded")

	assert.False(t, strings.Contains(buf.String(), "trace_id"))
}
