package http

import (
	"context"
	"log/slog"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/logging"
)

type principalKey struct{}

// ContextWithPrincipal stores the organizer resolved by RequireSession.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext reports the organizer behind the request, if any.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(application.Principal)
	return principal, ok
}

// ContextWithLogger and LoggerFromContext re-export the logging package
// helpers for middleware outside this package.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
