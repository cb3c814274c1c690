package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/hacktown-ops/internal/application"
)

// sessionCookie carries the session token for browser clients that do not
// send an Authorization header.
const sessionCookie = "hacktown_session"

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RefreshSession(ctx context.Context, token string) (application.RefreshSessionResult, error)
	RevokeSession(ctx context.Context, token string) error
}

// AuthHandler serves sign-in and sign-out for organizers.
type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) unavailable(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return true
	}
	return false
}

// Login answers with the same {access_token} shape the remote backend uses,
// so the REST client can log in against this service too.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(ctx, "Login", "error_kind", "bad_request").WarnContext(ctx, "undecodable login body", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.Authenticate(ctx, application.AuthenticateParams{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	user := result.User
	h.writeSession(ctx, w, http.StatusCreated, result.Session, &user)
}

// Refresh rotates the caller's token. The old token stops working.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()

	result, err := h.service.RefreshSession(ctx, sessionToken(r))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.writeSession(ctx, w, http.StatusOK, result.Session, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()

	if err := h.service.RevokeSession(ctx, sessionToken(r)); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// RevokeSession lets an administrator sign out another session by token.
func (h *AuthHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()

	principal, ok := PrincipalFromContext(ctx)
	if !ok || !principal.IsAdmin {
		h.log(ctx, "RevokeSession", "actor_id", principal.UserID).WarnContext(ctx, "session revocation needs an administrator")
		h.responder.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Operação não permitida.",
		})
		return
	}

	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		h.responder.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: "Informe o token a revogar."})
		return
	}
	if err := h.service.RevokeSession(ctx, token); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "RevokeSession", "actor_id", principal.UserID).InfoContext(ctx, "session revoked by administrator")
	w.WriteHeader(http.StatusNoContent)
}

// writeSession sets the cookie and writes the token body. user is only
// echoed on sign-in.
func (h *AuthHandler) writeSession(ctx context.Context, w http.ResponseWriter, status int, session application.Session, user *application.User) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt.UTC(),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	body := sessionResponse{
		AccessToken: session.Token,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if user != nil {
		body.User = &userDTO{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			IsAdmin:     user.IsAdmin,
		}
	}
	h.responder.writeJSON(ctx, w, status, body)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresAt   string   `json:"expires_at"`
	User        *userDTO `json:"user,omitempty"`
}

type userDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
}

// sessionToken prefers the bearer header over the cookie.
func sessionToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
