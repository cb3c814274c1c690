package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/hacktown-ops/internal/event"
)

// eventConfigID is the primary key of the single configuration row.
const eventConfigID = "default"

// GetEventConfig returns the configuration row, or an empty configuration
// when none was saved yet.
func (s *Store) GetEventConfig(ctx context.Context) (event.EventConfig, error) {
	cfg, err := s.getEventConfig(ctx, s.pool.db)
	if errors.Is(err, sql.ErrNoRows) {
		return event.EventConfig{ID: eventConfigID, SelectedDays: []event.WeekDay{}}, nil
	}
	if err != nil {
		return event.EventConfig{}, mapError(err)
	}
	return cfg, nil
}

func (s *Store) getEventConfig(ctx context.Context, q querier) (event.EventConfig, error) {
	var (
		cfg       event.EventConfig
		days      string
		start     sql.NullString
		end       sql.NullString
		updatedAt string
	)
	err := s.pool.queryRow(ctx, q,
		`SELECT id, selected_days, start_date, end_date, updated_at FROM event_config WHERE id = ?`,
		eventConfigID).Scan(&cfg.ID, &days, &start, &end, &updatedAt)
	if err != nil {
		return event.EventConfig{}, err
	}
	if cfg.SelectedDays, err = decodeDays(days); err != nil {
		return event.EventConfig{}, err
	}
	cfg.SelectedDays = event.SortDays(cfg.SelectedDays)
	cfg.StartDate = stringPointer(start)
	cfg.EndDate = stringPointer(end)
	cfg.UpdatedAt, _ = parseTime(updatedAt)
	return cfg, nil
}

// PutEventConfig replaces the configuration row.
func (s *Store) PutEventConfig(ctx context.Context, selectedDays []event.WeekDay, startDate, endDate *string) (event.EventConfig, error) {
	days, err := encodeDays(event.SortDays(selectedDays))
	if err != nil {
		return event.EventConfig{}, err
	}

	var cfg event.EventConfig
	err = s.write(ctx, "PutEventConfig", func(tx *sql.Tx) error {
		_, err := s.pool.exec(ctx, tx, `
			INSERT INTO event_config (id, selected_days, start_date, end_date, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				selected_days = excluded.selected_days,
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				updated_at = excluded.updated_at`,
			eventConfigID, days, nullableString(startDate), nullableString(endDate), s.timestamp())
		if err != nil {
			return err
		}
		cfg, err = s.getEventConfig(ctx, tx)
		return err
	})
	if err != nil {
		return event.EventConfig{}, err
	}
	return cfg, nil
}
