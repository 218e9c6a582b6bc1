package internal

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// ParseLevel maps LOG_LEVEL values onto slog levels. The second result is
// false for unrecognised input, which falls back to info.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// NewLogger builds the process logger. Production writes JSON with
// RFC3339Nano timestamps; every other environment writes text.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lvl, ok := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl == slog.LevelDebug}

	var h slog.Handler
	if env == "prod" {
		opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		}
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(h).With("service", "mercato", "env", env)
	if !ok {
		logger.Warn("Unknown log level, using info", "value", level)
	}
	return logger
}
