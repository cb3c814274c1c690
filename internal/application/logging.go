package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/hacktown-ops/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.OrDefault(logger)
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, base, append([]any{"service", serviceName, "operation", operation}, attrs...)...)
}

// errorKinds is checked in order; the first sentinel matched names the kind.
var errorKinds = []struct {
	target error
	kind   string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrNotFound, "not_found"},
	{ErrAlreadyExists, "already_exists"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrAccountDisabled, "account_disabled"},
	{ErrSessionExpired, "session_expired"},
	{ErrSessionRevoked, "session_revoked"},
	{ErrNotReady, "not_ready"},
	{context.Canceled, "canceled"},
	{context.DeadlineExceeded, "canceled"},
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}

	var (
		vErr *ValidationError
		iErr *IntegrityError
		bErr *BackendError
	)
	switch {
	case errors.As(err, &vErr):
		return "validation"
	case errors.As(err, &iErr):
		return "integrity"
	case errors.As(err, &bErr):
		return "backend"
	}
	return "unexpected"
}
