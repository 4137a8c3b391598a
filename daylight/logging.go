package daylight

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloudeng.io/logging/ctxlog"
)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", s)
}

// NewLogger creates a structured logger writing to w in the given format
// ("text" or "json") at the given level.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log_format: %s, must be one of: text, json", format)
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return ctxlog.WithLogger(ctx, logger)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	return ctxlog.Logger(ctx)
}

func ctxlogWith(ctx context.Context, attributes ...any) context.Context {
	return ctxlog.WithAttributes(ctx, attributes...)
}
