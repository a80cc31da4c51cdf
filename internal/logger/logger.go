package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is shared by every logger built here so a config reload can
// change verbosity without rebuilding handlers.
var Level = new(slog.LevelVar)

// New constructs a text logger on stderr tagged with the service name.
func New(service, level string) *slog.Logger {
	return NewWithWriter(os.Stderr, service, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, service, level string) *slog.Logger {
	SetLevel(level)
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level})
	return slog.New(h).With("service", service)
}

// SetLevel changes the level of every logger created by New.
func SetLevel(raw string) {
	Level.Set(ParseLevel(raw))
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values mean info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
