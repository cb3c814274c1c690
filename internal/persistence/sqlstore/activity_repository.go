package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/hacktown-ops/internal/event"
)

func (s *Store) getActivity(ctx context.Context, q querier, id string) (event.Activity, error) {
	var (
		a           event.Activity
		description sql.NullString
	)
	err := s.pool.queryRow(ctx, q,
		`SELECT id, title, speaker, description FROM activities WHERE id = ?`, id).
		Scan(&a.ID, &a.Title, &a.Speaker, &description)
	if err != nil {
		return event.Activity{}, err
	}
	a.Description = stringPointer(description)
	return a, nil
}

// GetActivity returns a single activity.
func (s *Store) GetActivity(ctx context.Context, id string) (event.Activity, error) {
	a, err := s.getActivity(ctx, s.pool.db, id)
	if err != nil {
		return event.Activity{}, mapError(err)
	}
	return a, nil
}

// CreateActivity inserts an activity, assigning an ID when empty.
func (s *Store) CreateActivity(ctx context.Context, activity event.Activity) (event.Activity, error) {
	if activity.ID == "" {
		activity.ID = s.newID()
	}
	err := s.write(ctx, "CreateActivity", func(tx *sql.Tx) error {
		now := s.timestamp()
		_, err := s.pool.exec(ctx, tx, `
			INSERT INTO activities (id, title, speaker, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			activity.ID, activity.Title, activity.Speaker, nullableString(activity.Description), now, now)
		return err
	})
	if err != nil {
		return event.Activity{}, err
	}
	return activity, nil
}

// UpdateActivity replaces the title, speaker and description of an activity.
func (s *Store) UpdateActivity(ctx context.Context, activity event.Activity) (event.Activity, error) {
	err := s.write(ctx, "UpdateActivity", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx,
			`UPDATE activities SET title = ?, speaker = ?, description = ?, updated_at = ? WHERE id = ?`,
			activity.Title, activity.Speaker, nullableString(activity.Description), s.timestamp(), activity.ID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return event.Activity{}, err
	}
	return activity, nil
}
