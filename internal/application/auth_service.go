package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialStore looks up organizer accounts for sign-in.
type CredentialStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// SessionRepository persists issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

const defaultSessionTTL = 12 * time.Hour

// AuthConfig configures an AuthService. Secret signs the session tokens;
// zero values fall back to a 12h TTL, time.Now and VerifyPassword.
type AuthConfig struct {
	Secret     []byte
	SessionTTL time.Duration
	NewID      func() string
	Now        func() time.Time
	Verify     PasswordVerifier
}

// AuthService signs organizers in and checks their session tokens. A token
// is only honored while its session row exists and is not revoked.
type AuthService struct {
	accounts CredentialStore
	sessions SessionRepository
	tokens   tokenSigner
	verify   PasswordVerifier
	newID    func() string
	now      func() time.Time
	ttl      time.Duration
	logger   *slog.Logger
}

func NewAuthService(accounts CredentialStore, sessions SessionRepository, cfg AuthConfig) *AuthService {
	return NewAuthServiceWithLogger(accounts, sessions, cfg, nil)
}

func NewAuthServiceWithLogger(accounts CredentialStore, sessions SessionRepository, cfg AuthConfig, logger *slog.Logger) *AuthService {
	s := &AuthService{
		accounts: accounts,
		sessions: sessions,
		verify:   cfg.Verify,
		newID:    cfg.NewID,
		now:      cfg.Now,
		ttl:      cfg.SessionTTL,
		logger:   defaultLogger(logger),
	}
	if s.verify == nil {
		s.verify = VerifyPassword
	}
	if s.newID == nil {
		s.newID = func() string { return "" }
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ttl <= 0 {
		s.ttl = defaultSessionTTL
	}
	s.tokens = tokenSigner{secret: cfg.Secret, now: s.now}
	return s
}

func (s *AuthService) ready() error {
	switch {
	case s == nil:
		return fmt.Errorf("AuthService is nil")
	case s.accounts == nil:
		return fmt.Errorf("credential store not configured")
	case s.sessions == nil:
		return fmt.Errorf("session repository not configured")
	}
	return nil
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate checks the organizer's password and opens a new session.
// Unknown e-mails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if err = s.ready(); err != nil {
		return
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "sign-in rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "organizer signed in", "user_id", result.User.ID, "session_id", result.Session.ID)
	}()

	var user User
	if user, err = s.checkPassword(ctx, email, params.Password); err != nil {
		return
	}

	now := s.now()
	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}
	session := Session{
		ID:        s.newID(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if session.Token, err = s.tokens.sign(session.ID, user, session.ExpiresAt); err != nil {
		return
	}
	if session, err = s.sessions.CreateSession(ctx, session); err != nil {
		return
	}
	result = AuthenticateResult{User: user, Session: session}
	return
}

func (s *AuthService) checkPassword(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	creds, err := s.accounts.GetUserCredentialsByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if creds.Disabled {
		return User{}, ErrAccountDisabled
	}
	if s.verify(creds.PasswordHash, password) != nil {
		return User{}, ErrInvalidCredentials
	}
	return creds.User, nil
}

// resolve maps a presented token to its live session and owner.
func (s *AuthService) resolve(ctx context.Context, token string) (Session, User, error) {
	if token == "" {
		return Session{}, User{}, ErrInvalidCredentials
	}
	claims, err := s.tokens.verify(token)
	if err != nil {
		return Session{}, User{}, err
	}

	session, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return Session{}, User{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, User{}, err
	}
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		return Session{}, User{}, ErrSessionRevoked
	}
	if session.ID != claims.ID || session.UserID != claims.Subject {
		return Session{}, User{}, ErrUnauthorized
	}

	user, err := s.accounts.GetUser(ctx, session.UserID)
	if errors.Is(err, ErrNotFound) {
		return Session{}, User{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, User{}, err
	}
	return session, user, nil
}

// RefreshSession rotates the token of a live session and restarts its TTL.
// The session id is kept; the previous token stops resolving.
func (s *AuthService) RefreshSession(ctx context.Context, token string) (result RefreshSessionResult, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "RefreshSession")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session refresh rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session refreshed", "session_id", result.Session.ID, "user_id", result.Session.UserID)
	}()

	session, user, err := s.resolve(ctx, strings.TrimSpace(token))
	if err != nil {
		return
	}
	now := s.now()
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.ttl)
	if session.Token, err = s.tokens.sign(session.ID, user, session.ExpiresAt); err != nil {
		return
	}
	if session, err = s.sessions.UpdateSession(ctx, session); err != nil {
		return
	}
	result = RefreshSessionResult{Session: session}
	return
}

// RevokeSession signs a token out and prunes sessions that already expired.
func (s *AuthService) RevokeSession(ctx context.Context, token string) (err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "RevokeSession")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session revocation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session revoked")
	}()

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidCredentials
	}
	now := s.now()
	if _, err = s.sessions.RevokeSession(ctx, token, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}
	return s.sessions.DeleteExpiredSessions(ctx, now)
}

// ValidateSession returns the principal behind a live session token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "ValidateSession")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "session validated", "principal_id", principal.UserID)
	}()

	_, user, err := s.resolve(ctx, strings.TrimSpace(token))
	if err != nil {
		return
	}
	principal = Principal{UserID: user.ID, IsAdmin: user.IsAdmin}
	return
}
