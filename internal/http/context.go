package http

import (
	"context"
	"log/slog"

	"github.com/example/trip-linker/internal/logging"
)

type contextKey string

const (
	destinationIDContextKey contextKey = "destination_id"
	sessionIDContextKey     contextKey = "session_id"
)

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithDestinationID injects the destination identifier resolved from the request path.
func ContextWithDestinationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, destinationIDContextKey, id)
}

// DestinationIDFromContext extracts a destination identifier previously associated with the context.
func DestinationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(destinationIDContextKey).(string)
	return id, ok
}

// ContextWithSessionID injects the search session identifier resolved from the request path.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, id)
}

// SessionIDFromContext extracts a search session identifier previously associated with the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	return id, ok
}
