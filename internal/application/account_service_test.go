package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type accountRepositoryStub struct {
	accounts map[string]UserCredentials
	created  int
	updated  int
}

func newAccountRepositoryStub() *accountRepositoryStub {
	return &accountRepositoryStub{accounts: make(map[string]UserCredentials)}
}

func (s *accountRepositoryStub) CreateAccount(ctx context.Context, creds UserCredentials) (User, error) {
	s.created++
	s.accounts[creds.User.Email] = creds
	return creds.User, nil
}

func (s *accountRepositoryStub) UpdateAccount(ctx context.Context, creds UserCredentials) (User, error) {
	s.updated++
	s.accounts[creds.User.Email] = creds
	return creds.User, nil
}

func (s *accountRepositoryStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	creds, ok := s.accounts[email]
	if !ok {
		return UserCredentials{}, ErrNotFound
	}
	return creds, nil
}

func newTestAccountService(repo AccountRepository) *AccountService {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc := NewAccountService(repo, func() string { return "user-1" }, func() time.Time { return now })
	svc.hash = func(password string) (string, error) { return "hashed:" + password, nil }
	return svc
}

func TestAccountService_EnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates the admin when missing", func(t *testing.T) {
		t.Parallel()

		repo := newAccountRepositoryStub()
		svc := newTestAccountService(repo)

		user, err := svc.EnsureAdmin(context.Background(), EnsureAdminParams{Email: " Admin@Hacktown.com ", Password: "s3nha-forte"})
		if err != nil {
			t.Fatalf("EnsureAdmin returned error: %v", err)
		}
		if user.ID != "user-1" || user.Email != "admin@hacktown.com" || !user.IsAdmin || user.DisplayName != "Administrador" {
			t.Fatalf("unexpected user: %+v", user)
		}
		if repo.created != 1 || repo.accounts["admin@hacktown.com"].PasswordHash != "hashed:s3nha-forte" {
			t.Fatalf("expected account to be created with hashed password")
		}
	})

	t.Run("resets the password of an existing admin", func(t *testing.T) {
		t.Parallel()

		repo := newAccountRepositoryStub()
		repo.accounts["admin@hacktown.com"] = UserCredentials{
			User:         User{ID: "user-9", Email: "admin@hacktown.com"},
			PasswordHash: "old",
			Disabled:     true,
		}
		svc := newTestAccountService(repo)

		user, err := svc.EnsureAdmin(context.Background(), EnsureAdminParams{Email: "admin@hacktown.com", Password: "nova-senha", DisplayName: "Produção"})
		if err != nil {
			t.Fatalf("EnsureAdmin returned error: %v", err)
		}
		stored := repo.accounts["admin@hacktown.com"]
		if user.ID != "user-9" || repo.updated != 1 || stored.Disabled || stored.PasswordHash != "hashed:nova-senha" {
			t.Fatalf("unexpected update: user=%+v stored=%+v", user, stored)
		}
		if stored.User.DisplayName != "Produção" {
			t.Fatalf("expected display name to be updated, got %q", stored.User.DisplayName)
		}
	})

	t.Run("validates email and password", func(t *testing.T) {
		t.Parallel()

		svc := newTestAccountService(newAccountRepositoryStub())
		_, err := svc.EnsureAdmin(context.Background(), EnsureAdminParams{Email: "not-an-email", Password: "short"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["email"]; !ok {
			t.Fatalf("expected email error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["password"]; !ok {
			t.Fatalf("expected password error, got %v", vErr.FieldErrors)
		}
	})
}
