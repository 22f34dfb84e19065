package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/logging"
	"github.com/example/trip-linker/internal/session"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrNotFound), errors.Is(err, destinations.ErrUnknownDestination):
		return "not_found"
	case errors.Is(err, destinations.ErrNotPersisted), errors.Is(err, session.ErrSettingsNotPersisted):
		return "not_persisted"
	case errors.Is(err, session.ErrBlocked):
		return "blocked"
	case errors.Is(err, session.ErrClipboard):
		return "clipboard"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
