package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func plainVerifier(hash, password string) error {
	if hash == password {
		return nil
	}
	return ErrInvalidCredentials
}

// authFixture is an AuthService over in-memory stubs with a movable clock.
type authFixture struct {
	svc      *AuthService
	sessions *sessionRepositoryStub
	now      time.Time
}

func newAuthFixture(t *testing.T, creds *credentialStoreStub) *authFixture {
	t.Helper()
	f := &authFixture{sessions: newSessionRepositoryStub(), now: time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)}
	issued := 0
	f.svc = NewAuthService(creds, f.sessions, AuthConfig{
		Secret:     testSecret,
		SessionTTL: time.Hour,
		NewID: func() string {
			issued++
			return fmt.Sprintf("session-%d", issued)
		},
		Now:    func() time.Time { return f.now },
		Verify: plainVerifier,
	})
	return f
}

func (f *authFixture) login(t *testing.T) Session {
	t.Helper()
	result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "produtora@hacktown.com.br", Password: "palco"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	return result.Session
}

func organizerCredentials() *credentialStoreStub {
	return &credentialStoreStub{
		credentials: UserCredentials{
			User:         User{ID: "user-1", Email: "produtora@hacktown.com.br", IsAdmin: true},
			PasswordHash: "palco",
		},
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("opens a signed session", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())

		result, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: " Produtora@Hacktown.com.br ", Password: "palco"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		session := result.Session
		if session.ID != "session-1" || strings.Count(session.Token, ".") != 2 {
			t.Fatalf("expected session-1 with a JWT, got %+v", session)
		}
		claims, err := f.svc.tokens.verify(session.Token)
		if err != nil {
			t.Fatalf("expected token to verify, got %v", err)
		}
		if claims.Subject != "user-1" || claims.ID != "session-1" || !claims.Admin || claims.Issuer != tokenIssuer {
			t.Fatalf("unexpected claims %+v", claims)
		}
		if !session.ExpiresAt.Equal(f.now.Add(time.Hour)) {
			t.Fatalf("expected expiry one hour ahead, got %s", session.ExpiresAt)
		}
		if len(f.sessions.deleteCalls) != 1 || !f.sessions.deleteCalls[0].Equal(f.now) {
			t.Fatalf("expected expired sessions pruned at sign-in, got %v", f.sessions.deleteCalls)
		}
	})

	disabled := organizerCredentials()
	disabled.credentials.Disabled = true

	tests := []struct {
		name   string
		creds  *credentialStoreStub
		params AuthenticateParams
		want   error
	}{
		{name: "wrong password", creds: organizerCredentials(), params: AuthenticateParams{Email: "produtora@hacktown.com.br", Password: "sala"}, want: ErrInvalidCredentials},
		{name: "empty email", creds: organizerCredentials(), params: AuthenticateParams{Password: "palco"}, want: ErrInvalidCredentials},
		{name: "empty password", creds: organizerCredentials(), params: AuthenticateParams{Email: "produtora@hacktown.com.br"}, want: ErrInvalidCredentials},
		{name: "unknown account", creds: &credentialStoreStub{}, params: AuthenticateParams{Email: "ninguem@hacktown.com.br", Password: "x"}, want: ErrInvalidCredentials},
		{name: "disabled account", creds: disabled, params: AuthenticateParams{Email: "produtora@hacktown.com.br", Password: "palco"}, want: ErrAccountDisabled},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newAuthFixture(t, tc.creds)
			if _, err := f.svc.Authenticate(context.Background(), tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(f.sessions.sessionsByID) != 0 {
				t.Fatal("expected no session to be created")
			}
		})
	}

	t.Run("store failures pass through", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("database locked")
		f := newAuthFixture(t, &credentialStoreStub{err: boom})
		if _, err := f.svc.Authenticate(context.Background(), AuthenticateParams{Email: "a@b.c", Password: "x"}); !errors.Is(err, boom) {
			t.Fatalf("expected store error, got %v", err)
		}
	})
}

func TestAuthService_RefreshSession(t *testing.T) {
	t.Parallel()

	t.Run("rotates the token and restarts the ttl", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		issued := f.login(t)

		f.now = f.now.Add(30 * time.Minute)
		refreshed, err := f.svc.RefreshSession(context.Background(), issued.Token)
		if err != nil {
			t.Fatalf("RefreshSession failed: %v", err)
		}
		if refreshed.Session.Token == issued.Token || refreshed.Session.ID != issued.ID {
			t.Fatalf("expected a new token for %s, got %+v", issued.ID, refreshed.Session)
		}
		if !refreshed.Session.ExpiresAt.Equal(f.now.Add(time.Hour)) {
			t.Fatalf("expected extended expiry, got %s", refreshed.Session.ExpiresAt)
		}
		if _, err := f.svc.ValidateSession(context.Background(), issued.Token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected the old token to stop resolving, got %v", err)
		}
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		issued := f.login(t)

		f.now = f.now.Add(2 * time.Hour)
		if _, err := f.svc.RefreshSession(context.Background(), issued.Token); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		issued := f.login(t)
		if err := f.svc.RevokeSession(context.Background(), issued.Token); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if _, err := f.svc.RefreshSession(context.Background(), issued.Token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t, organizerCredentials())
	for _, token := range []string{"  ", "unknown"} {
		if err := f.svc.RevokeSession(context.Background(), token); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %q, got %v", token, err)
		}
	}
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("returns the principal of a live session", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		issued := f.login(t)

		principal, err := f.svc.ValidateSession(context.Background(), " "+issued.Token+" ")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.UserID != "user-1" || !principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		issued := f.login(t)

		other := NewAuthService(organizerCredentials(), f.sessions, AuthConfig{Secret: []byte("other-secret"), Now: func() time.Time { return f.now }})
		if _, err := other.ValidateSession(context.Background(), issued.Token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects revoked then expired sessions", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		first := f.login(t)
		if err := f.svc.RevokeSession(context.Background(), first.Token); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if _, err := f.svc.ValidateSession(context.Background(), first.Token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}

		second := f.login(t)
		f.now = f.now.Add(61 * time.Minute)
		if _, err := f.svc.ValidateSession(context.Background(), second.Token); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects tokens without a persisted session", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		token, err := f.svc.tokens.sign("ghost", User{ID: "user-1"}, f.now.Add(time.Hour))
		if err != nil {
			t.Fatalf("sign failed: %v", err)
		}
		if _, err := f.svc.ValidateSession(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects a session owned by another user", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t, organizerCredentials())
		issued := f.login(t)
		forged, err := f.svc.tokens.sign(issued.ID, User{ID: "user-2"}, f.now.Add(time.Hour))
		if err != nil {
			t.Fatalf("sign failed: %v", err)
		}
		f.sessions.tokenToID[forged] = issued.ID
		if _, err := f.svc.ValidateSession(context.Background(), forged); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

// credentialStoreStub implements CredentialStore for tests.
type credentialStoreStub struct {
	credentials UserCredentials
	err         error
}

func (c *credentialStoreStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	if c.err != nil {
		return UserCredentials{}, c.err
	}
	if c.credentials.User.ID == "" {
		return UserCredentials{}, ErrNotFound
	}
	return c.credentials, nil
}

func (c *credentialStoreStub) GetUser(ctx context.Context, id string) (User, error) {
	if c.err != nil {
		return User{}, c.err
	}
	if c.credentials.User.ID == id {
		return c.credentials.User, nil
	}
	return User{}, ErrNotFound
}

// sessionRepositoryStub provides an in-memory implementation of SessionRepository for tests.
type sessionRepositoryStub struct {
	sessionsByID map[string]Session
	tokenToID    map[string]string

	createErr error
	getErr    error
	updateErr error
	revokeErr error
	deleteErr error

	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{
		sessionsByID: make(map[string]Session),
		tokenToID:    make(map[string]string),
	}
}

func (s *sessionRepositoryStub) seed(session Session) {
	s.sessionsByID[session.ID] = cloneSession(session)
	s.tokenToID[session.Token] = session.ID
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.seed(session)
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) GetSession(ctx context.Context, token string) (Session, error) {
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(s.sessionsByID[id]), nil
}

func (s *sessionRepositoryStub) UpdateSession(ctx context.Context, session Session) (Session, error) {
	if s.updateErr != nil {
		return Session{}, s.updateErr
	}
	current, ok := s.sessionsByID[session.ID]
	if !ok {
		return Session{}, ErrNotFound
	}
	if current.Token != session.Token {
		delete(s.tokenToID, current.Token)
	}
	s.sessionsByID[session.ID] = cloneSession(session)
	s.tokenToID[session.Token] = session.ID
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	session := s.sessionsByID[id]
	revoked := revokedAt.UTC()
	session.RevokedAt = &revoked
	session.UpdatedAt = revoked
	s.sessionsByID[id] = session
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	cutoff := reference.UTC()
	s.deleteCalls = append(s.deleteCalls, cutoff)
	for id, session := range s.sessionsByID {
		if session.ExpiresAt.IsZero() {
			continue
		}
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessionsByID, id)
			delete(s.tokenToID, session.Token)
		}
	}
	return nil
}

func cloneSession(session Session) Session {
	clone := session
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC()
		clone.RevokedAt = &revoked
	}
	return clone
}
