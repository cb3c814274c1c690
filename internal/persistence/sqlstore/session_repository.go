package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/hacktown-ops/internal/persistence"
)

const sessionColumns = `id, user_id, token, expires_at, created_at, updated_at, revoked_at`

var _ persistence.SessionRepository = (*Store)(nil)

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session                         persistence.Session
		expiresAt, createdAt, updatedAt string
		revokedAt                       sql.NullString
	)
	err := row.Scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &createdAt, &updatedAt, &revokedAt)
	if err != nil {
		return persistence.Session{}, err
	}
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	if revokedAt.Valid {
		revoked, err := parseTime(revokedAt.String)
		if err != nil {
			return persistence.Session{}, err
		}
		session.RevokedAt = &revoked
	}
	return session, nil
}

func formatNullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// CreateSession stores a new session for a user.
func (s *Store) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	session.Token = strings.TrimSpace(session.Token)
	if session.ID == "" || session.UserID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	now := s.now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	var created persistence.Session
	err := s.write(ctx, "CreateSession", func(tx *sql.Tx) error {
		_, err := s.pool.exec(ctx, tx, `
			INSERT INTO sessions (`+sessionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			session.ID, session.UserID, session.Token, formatTime(session.ExpiresAt),
			formatTime(session.CreatedAt), formatTime(session.UpdatedAt), formatNullableTime(session.RevokedAt))
		if err != nil {
			return err
		}
		created, err = s.getSession(ctx, tx, session.Token)
		return err
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return created, nil
}

func (s *Store) getSession(ctx context.Context, q querier, token string) (persistence.Session, error) {
	return scanSession(s.pool.queryRow(ctx, q,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token))
}

// GetSession returns a session by token.
func (s *Store) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session, err := s.getSession(ctx, s.pool.db, token)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

// UpdateSession rewrites the token, expiry and revocation of a session.
func (s *Store) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	session.Token = strings.TrimSpace(session.Token)
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = s.now()
	}

	var updated persistence.Session
	err := s.write(ctx, "UpdateSession", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `
			UPDATE sessions SET token = ?, expires_at = ?, updated_at = ?, revoked_at = ?
			WHERE id = ?`,
			session.Token, formatTime(session.ExpiresAt), formatTime(session.UpdatedAt),
			formatNullableTime(session.RevokedAt), session.ID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		updated, err = s.getSession(ctx, tx, session.Token)
		return err
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return updated, nil
}

// RevokeSession marks the session with the given token as revoked.
func (s *Store) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var revoked persistence.Session
	err := s.write(ctx, "RevokeSession", func(tx *sql.Tx) error {
		stamp := formatTime(revokedAt)
		res, err := s.pool.exec(ctx, tx,
			`UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE token = ?`, stamp, stamp, token)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		revoked, err = s.getSession(ctx, tx, token)
		return err
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return revoked, nil
}

// DeleteExpiredSessions removes sessions that expired on or before reference.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return s.write(ctx, "DeleteExpiredSessions", func(tx *sql.Tx) error {
		_, err := s.pool.exec(ctx, tx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference))
		return err
	})
}
