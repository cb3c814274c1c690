package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// AccountRepository captures the persistence operations needed by the account service.
type AccountRepository interface {
	CreateAccount(ctx context.Context, creds UserCredentials) (User, error)
	UpdateAccount(ctx context.Context, creds UserCredentials) (User, error)
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
}

// EnsureAdminParams describes the organizer account seeded at startup.
type EnsureAdminParams struct {
	Email       string
	Password    string
	DisplayName string
}

// AccountService manages the organizer accounts that may sign in.
type AccountService struct {
	accounts    AccountRepository
	idGenerator func() string
	now         func() time.Time
	hash        func(password string) (string, error)
	logger      *slog.Logger
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(accounts AccountRepository, idGenerator func() string, now func() time.Time) *AccountService {
	return NewAccountServiceWithLogger(accounts, idGenerator, now, nil)
}

// NewAccountServiceWithLogger wires dependencies with a specified logger.
func NewAccountServiceWithLogger(accounts AccountRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AccountService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		accounts:    accounts,
		idGenerator: idGenerator,
		now:         now,
		hash: func(password string) (string, error) {
			return DefaultPasswordHasher.Hash(password)
		},
		logger: defaultLogger(logger),
	}
}

// EnsureAdmin creates the administrator account or resets its password so
// that the configured credentials always sign in.
func (s *AccountService) EnsureAdmin(ctx context.Context, params EnsureAdminParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AccountService is nil")
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account repository not configured")
		return
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	logger := serviceLogger(ctx, s.logger, "AccountService", "EnsureAdmin", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to ensure admin account", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "admin account ready")
	}()

	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", msgRequired)
	} else if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		vErr.add("email", "E-mail inválido")
	}
	if len(params.Password) < 8 {
		vErr.add("password", "A senha deve ter pelo menos 8 caracteres")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	if hash, err = s.hash(params.Password); err != nil {
		return
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = "Administrador"
	}

	now := s.now()
	existing, lookupErr := s.accounts.GetUserCredentialsByEmail(ctx, email)
	switch {
	case lookupErr == nil:
		existing.User.DisplayName = displayName
		existing.User.IsAdmin = true
		existing.User.UpdatedAt = now
		existing.PasswordHash = hash
		existing.Disabled = false
		user, err = s.accounts.UpdateAccount(ctx, existing)
	case errors.Is(lookupErr, ErrNotFound):
		user, err = s.accounts.CreateAccount(ctx, UserCredentials{
			User: User{
				ID:          s.idGenerator(),
				Email:       email,
				DisplayName: displayName,
				IsAdmin:     true,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			PasswordHash: hash,
		})
	default:
		err = lookupErr
	}
	return
}
