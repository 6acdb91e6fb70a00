package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("production", "info", &buf)

	logger.Debug("hidden")
	logger.Info("upload authorized", "key", "contact/1-abc.png")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "upload authorized", entry["msg"])
	assert.Equal(t, "contact/1-abc.png", entry["key"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewDevelopmentWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New("development", "debug", &buf)

	logger.Debug("presigning", "key", "contact/1-abc.png")

	out := buf.String()
	assert.Contains(t, out, "presigning")
	assert.Contains(t, out, "contact/1-abc.png")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewRequestLogger(t *testing.T) {
	logger := NewRequestLogger("proxy-upload", "production", "warn")
	require.NotNil(t, logger)
	assert.True(t, logger.Options.JSON)
	assert.Equal(t, slog.LevelWarn, logger.Options.LogLevel)
}
