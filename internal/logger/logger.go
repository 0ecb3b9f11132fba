// Package logger configures the application's structured logging and
// provides request-scoped loggers for HTTP handlers.
//
// In dev the console handler (tint) is used for readable output; prod and
// staging log JSON to stdout.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// LevelNone disables logging entirely (used by tests).
const LevelNone = slog.Level(127)

// ParseLogLevel converts a config string to a slog level. Unknown values
// default to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return LevelNone
	default:
		return slog.LevelInfo
	}
}

// InitLogger creates the application logger for the given level and
// environment and installs it as the slog default.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	var handler slog.Handler

	var out io.Writer = os.Stdout
	if level == LevelNone {
		out = io.Discard
	}

	switch environment {
	case "dev", "test":
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

type contextKey int

const (
	requestLoggerKey contextKey = iota
	requestAttrsKey
)

// requestAttrs accumulates attributes added by middleware/handlers during a
// request so the final request log line can include them.
type requestAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithRequestLogger stores a request-scoped logger (and an attribute
// accumulator) in the context. Installed by the request-logging middleware.
func ContextWithRequestLogger(ctx context.Context, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, requestLoggerKey, logger)
	return context.WithValue(ctx, requestAttrsKey, &requestAttrs{})
}

// ContextRequestLogger returns the request-scoped logger stored in the
// context, or the default logger when none was installed (e.g. in tests).
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// ContextWithLogAttrs records additional attributes against the current
// request; they are emitted on the final request log line.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	if a, ok := ctx.Value(requestAttrsKey).(*requestAttrs); ok {
		a.mu.Lock()
		a.attrs = append(a.attrs, attrs...)
		a.mu.Unlock()
	}
}

// ContextLogAttrs returns the attributes accumulated for the request.
func ContextLogAttrs(ctx context.Context) []slog.Attr {
	if a, ok := ctx.Value(requestAttrsKey).(*requestAttrs); ok {
		a.mu.Lock()
		defer a.mu.Unlock()
		return append([]slog.Attr(nil), a.attrs...)
	}
	return nil
}
