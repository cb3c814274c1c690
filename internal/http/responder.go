package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/hacktown-ops/internal/application"
)

var (
	errBadRequestBody      = errors.New("Formato de requisição inválido.")
	errMissingSessionToken = errors.New("Informe o token de autenticação.")
)

const (
	msgNotFound           = "Recurso não encontrado."
	msgValidation         = "Dados inválidos."
	msgConflict           = "O recurso está em conflito com o estado atual."
	msgInvalidCredentials = "E-mail ou senha inválidos."
	msgAccountDisabled    = "Conta desativada."
	msgNotReady           = "Os dados ainda estão carregando. Tente novamente em instantes."
	msgInternal           = "Erro interno do servidor."
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// writeFieldError reports a single malformed request field as a validation failure.
func (r responder) writeFieldError(ctx context.Context, w http.ResponseWriter, field, message string) {
	r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
		Message: msgValidation,
		Errors:  map[string]string{field: message},
	})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		vErr *application.ValidationError
		iErr *application.IntegrityError
		bErr *application.BackendError
	)
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: msgValidation,
			Errors:  vErr.FieldErrors,
		})
	case errors.As(err, &iErr):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "INTEGRITY",
			Message:   iErr.Error(),
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   msgInvalidCredentials,
		})
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_ACCOUNT_DISABLED",
			Message:   msgAccountDisabled,
		})
	case application.IsSessionError(err):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   application.MessageSessionExpired,
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: msgNotFound})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: msgConflict})
	case errors.Is(err, application.ErrNotReady):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Message: msgNotReady})
	case errors.As(err, &bErr):
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{
			ErrorCode: "BACKEND_FAILURE",
			Message:   application.MessageBackendFailure,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.writeJSON(ctx, w, http.StatusGatewayTimeout, errorResponse{Message: application.MessageBackendFailure})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: msgInternal})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requisição inválida."
	case http.StatusUnauthorized:
		return "Autenticação necessária."
	case http.StatusForbidden:
		return "Operação não permitida."
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusConflict:
		return msgConflict
	case http.StatusUnprocessableEntity:
		return msgValidation
	case http.StatusServiceUnavailable:
		return msgNotReady
	default:
		return msgInternal
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
