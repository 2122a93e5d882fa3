package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arturoeanton/codehub/pkg/config"
)

// Setup installs the process-wide slog logger described by cfg.
func Setup(cfg *config.Config) *slog.Logger {
	l := New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(l)
	return l
}

// New builds a text or JSON logger writing to w.
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel converts a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
