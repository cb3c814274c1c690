package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/hacktown-ops/internal/persistence"
)

const userColumns = `id, email, display_name, password_hash, is_admin, disabled, created_at, updated_at`

var _ persistence.UserRepository = (*Store)(nil)

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                 persistence.User
		createdAt, updatedAt string
	)
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.IsAdmin, &user.Disabled, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// CreateUser inserts an organizer account. Emails are stored lower case.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	now := s.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	return s.write(ctx, "CreateUser", func(tx *sql.Tx) error {
		_, err := s.pool.exec(ctx, tx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, normalizeEmail(user.Email), user.DisplayName, user.PasswordHash,
			user.IsAdmin, user.Disabled, formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
		return err
	})
}

// UpdateUser replaces the mutable account fields.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	updatedAt := user.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	return s.write(ctx, "UpdateUser", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `
			UPDATE users
			SET email = ?, display_name = ?, password_hash = ?, is_admin = ?, disabled = ?, updated_at = ?
			WHERE id = ?`,
			normalizeEmail(user.Email), user.DisplayName, user.PasswordHash,
			user.IsAdmin, user.Disabled, formatTime(updatedAt), user.ID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

// GetUser returns an account by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	user, err := scanUser(s.pool.queryRow(ctx, s.pool.db,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	return user, nil
}

// GetUserByEmail returns an account by case-insensitive email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	user, err := scanUser(s.pool.queryRow(ctx, s.pool.db,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, normalized))
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	return user, nil
}

// ListUsers returns accounts ordered by creation time, then ID.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := s.pool.query(ctx, s.pool.db,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
