package http

import (
	"context"
	"log/slog"

	"github.com/example/hacktown-ops/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.OrDefault(logger)
}

// handlerLogger tags entries with the handler, the operation and, once the
// session middleware ran, the organizer's user id.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	pairs := []any{"handler", handlerName, "operation", operation}
	if principal, ok := PrincipalFromContext(ctx); ok && principal.UserID != "" {
		pairs = append(pairs, "user_id", principal.UserID)
	}
	return logging.Scoped(ctx, fallback, append(pairs, attrs...)...)
}
