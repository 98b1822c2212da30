package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Writer: &buf})

	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{name: "production uses json", environment: "production", wantJSON: true},
		{name: "development uses pretty", environment: "development"},
		{name: "test uses pretty", environment: "test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})

			logger.Info("hello")

			assert.Equal(t, tt.wantJSON, json.Valid(bytes.TrimSpace(buf.Bytes())))
			assert.Contains(t, buf.String(), "hello")
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatJSON, Environment: "development", Writer: &buf})

	logger.Info("test")

	assert.Contains(t, buf.String(), `"msg":"test"`)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: FormatJSON, Writer: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_NoColor(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatPretty, Writer: &buf, NoColor: true})

	logger.Info("recipe created", "id", "rcp-1", "name", "Banana Bread")

	line := buf.String()
	assert.NotContains(t, line, "\033[")
	assert.Contains(t, line, "INF recipe created")
	assert.Contains(t, line, "id=rcp-1")
	assert.Contains(t, line, `name="Banana Bread"`)
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatPretty, Writer: &buf, NoColor: true})

	logger.With("component", "api").
		WithGroup("http").
		Info("request", "status", 200, slog.Group("timing", slog.Int("ms", 3)))

	line := buf.String()
	assert.Contains(t, line, "component=api")
	assert.Contains(t, line, "http.status=200")
	assert.Contains(t, line, "http.timing.ms=3")
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}, false)

	assert.False(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatJSON, Writer: &buf})

	logger.WithError(errors.New("boom")).WithComponent("store").Info("failed")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "store", record["component"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() { logger.Error("ignored") })
}
