// Package logging builds the slog loggers used by the binaries.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/lmittmann/tint"
)

// ParseLevel maps a LOG_LEVEL value to a slog level; unknown values map to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a colored console logger in development and a JSON logger otherwise
func New(environment, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)

	if environment == "development" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// NewRequestLogger returns the access logger mounted on the router
func NewRequestLogger(service, environment, level string) *httplog.Logger {
	return httplog.NewLogger(service, httplog.Options{
		JSON:           environment != "development",
		LogLevel:       ParseLevel(level),
		Concise:        true,
		RequestHeaders: false,
	})
}
