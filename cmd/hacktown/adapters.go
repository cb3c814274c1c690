package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/persistence"
	"github.com/example/hacktown-ops/internal/persistence/sqlstore"
)

// sqlBackend exposes a sqlstore.Store as an application.Backend.
type sqlBackend struct {
	*sqlstore.Store
}

var _ application.Backend = sqlBackend{}

func (b sqlBackend) ApplyDefaultSlots(ctx context.Context, venueID string) (application.DefaultSlotsResult, error) {
	result, err := b.Store.ApplyDefaultSlots(ctx, venueID)
	if err != nil {
		return application.DefaultSlotsResult{}, err
	}
	return application.DefaultSlotsResult{Message: result.Message, SlotsCreated: result.SlotsCreated}, nil
}

// mapRepositoryError turns persistence sentinels into the application ones
// the auth and account services branch on.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	}
	return err
}

type accountStoreAdapter struct {
	repo persistence.UserRepository
}

func newAccountStoreAdapter(repo persistence.UserRepository) *accountStoreAdapter {
	return &accountStoreAdapter{repo: repo}
}

func (a *accountStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, mapRepositoryError(err)
	}
	return toApplicationCredentials(stored), nil
}

func (a *accountStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapRepositoryError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *accountStoreAdapter) CreateAccount(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(creds)); err != nil {
		return application.User{}, mapRepositoryError(err)
	}
	return a.GetUser(ctx, creds.User.ID)
}

func (a *accountStoreAdapter) UpdateAccount(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(creds)); err != nil {
		return application.User{}, mapRepositoryError(err)
	}
	return a.GetUser(ctx, creds.User.ID)
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapRepositoryError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapRepositoryError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapRepositoryError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapRepositoryError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapRepositoryError(a.repo.DeleteExpiredSessions(ctx, reference))
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toApplicationCredentials(model persistence.User) application.UserCredentials {
	return application.UserCredentials{
		User:         toApplicationUser(model),
		PasswordHash: model.PasswordHash,
		Disabled:     model.Disabled,
	}
}

func toPersistenceUser(creds application.UserCredentials) persistence.User {
	return persistence.User{
		ID:           creds.User.ID,
		Email:        creds.User.Email,
		DisplayName:  creds.User.DisplayName,
		PasswordHash: creds.PasswordHash,
		IsAdmin:      creds.User.IsAdmin,
		Disabled:     creds.Disabled,
		CreatedAt:    creds.User.CreatedAt,
		UpdatedAt:    creds.User.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
