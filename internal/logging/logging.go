// Package logging builds the structured logger used across the runtime
// and threads it through context.Context, following the same typed
// context-key accessor pattern the agent package uses for request-scoped
// values (WithX / XFromContext pairs).
package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerKey struct{}

// New builds a slog.Logger. format="text" yields a human-readable
// handler (useful for local `lawagent ask`); any other value (including
// empty) yields JSON, suitable for service deployments.
func New(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// WithLogger attaches a logger to ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the attached logger, falling back to
// slog.Default() when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
