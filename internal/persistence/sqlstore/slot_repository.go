package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/hacktown-ops/internal/event"
)

func scanSlotTemplate(row rowScanner) (event.SlotTemplate, error) {
	var (
		t    event.SlotTemplate
		days sql.NullString
	)
	if err := row.Scan(&t.ID, &t.VenueID, &t.StartTime, &t.EndTime, &days); err != nil {
		return event.SlotTemplate{}, err
	}
	scope, err := decodeScope(days)
	if err != nil {
		return event.SlotTemplate{}, err
	}
	t.Scope = scope
	return t, nil
}

// ListSlotTemplates returns every template ordered by venue and start time.
func (s *Store) ListSlotTemplates(ctx context.Context) ([]event.SlotTemplate, error) {
	templates, err := s.listSlotTemplates(ctx, s.pool.db, "")
	if err != nil {
		return nil, mapError(err)
	}
	return templates, nil
}

// listSlotTemplates lists all templates, or only those of venueID when set.
func (s *Store) listSlotTemplates(ctx context.Context, q querier, venueID string) ([]event.SlotTemplate, error) {
	query := `SELECT id, venue_id, start_time, end_time, days FROM slot_templates`
	var args []any
	if venueID != "" {
		query += ` WHERE venue_id = ?`
		args = append(args, venueID)
	}
	query += ` ORDER BY venue_id, start_time, id`

	rows, err := s.pool.query(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []event.SlotTemplate{}
	for rows.Next() {
		t, err := scanSlotTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Store) insertSlotTemplate(ctx context.Context, q querier, t event.SlotTemplate) error {
	days, err := encodeScope(t.Scope)
	if err != nil {
		return err
	}
	now := s.timestamp()
	_, err = s.pool.exec(ctx, q, `
		INSERT INTO slot_templates (id, venue_id, start_time, end_time, days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.VenueID, t.StartTime, t.EndTime, days, now, now)
	return err
}

// CreateSlotTemplate inserts a template, assigning an ID when empty.
func (s *Store) CreateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error) {
	if template.ID == "" {
		template.ID = s.newID()
	}
	err := s.write(ctx, "CreateSlotTemplate", func(tx *sql.Tx) error {
		return s.insertSlotTemplate(ctx, tx, template)
	})
	if err != nil {
		return event.SlotTemplate{}, err
	}
	return template, nil
}

// UpdateSlotTemplate replaces the venue, times and day scope of a template.
func (s *Store) UpdateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error) {
	days, err := encodeScope(template.Scope)
	if err != nil {
		return event.SlotTemplate{}, err
	}
	err = s.write(ctx, "UpdateSlotTemplate", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `
			UPDATE slot_templates
			SET venue_id = ?, start_time = ?, end_time = ?, days = ?, updated_at = ?
			WHERE id = ?`,
			template.VenueID, template.StartTime, template.EndTime, days, s.timestamp(), template.ID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return event.SlotTemplate{}, err
	}
	return template, nil
}

// DeleteSlotTemplate removes a template; its day activities cascade.
func (s *Store) DeleteSlotTemplate(ctx context.Context, id string) error {
	return s.write(ctx, "DeleteSlotTemplate", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `DELETE FROM slot_templates WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

// ListDaySlotActivities returns every assignment with its activity embedded.
func (s *Store) ListDaySlotActivities(ctx context.Context) ([]event.DaySlotActivity, error) {
	rows, err := s.pool.query(ctx, s.pool.db, `
		SELECT d.id, d.slot_template_id, d.day, d.activity_id, a.id, a.title, a.speaker, a.description
		FROM day_slot_activities d
		LEFT JOIN activities a ON a.id = d.activity_id
		ORDER BY d.slot_template_id, d.day, d.id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []event.DaySlotActivity{}
	for rows.Next() {
		var (
			d           event.DaySlotActivity
			day         string
			activityID  sql.NullString
			title       sql.NullString
			speaker     sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.SlotTemplateID, &day, &d.ActivityID, &activityID, &title, &speaker, &description); err != nil {
			return nil, mapError(err)
		}
		d.Day = event.WeekDay(day)
		if activityID.Valid {
			d.Activity = &event.Activity{
				ID:          activityID.String,
				Title:       title.String,
				Speaker:     speaker.String,
				Description: stringPointer(description),
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// CreateDaySlotActivity binds an activity to a (template, day) pair. A second
// binding for the same pair is rejected as a duplicate.
func (s *Store) CreateDaySlotActivity(ctx context.Context, dsa event.DaySlotActivity) (event.DaySlotActivity, error) {
	if dsa.ID == "" {
		dsa.ID = s.newID()
	}
	err := s.write(ctx, "CreateDaySlotActivity", func(tx *sql.Tx) error {
		now := s.timestamp()
		_, err := s.pool.exec(ctx, tx, `
			INSERT INTO day_slot_activities (id, slot_template_id, day, activity_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			dsa.ID, dsa.SlotTemplateID, string(dsa.Day), dsa.ActivityID, now, now)
		if err != nil {
			return err
		}
		activity, err := s.getActivity(ctx, tx, dsa.ActivityID)
		if err != nil {
			return err
		}
		dsa.Activity = &activity
		return nil
	})
	if err != nil {
		return event.DaySlotActivity{}, err
	}
	return dsa, nil
}

// UpdateDaySlotActivity points an existing binding at another activity.
func (s *Store) UpdateDaySlotActivity(ctx context.Context, id, activityID string) (event.DaySlotActivity, error) {
	var dsa event.DaySlotActivity
	err := s.write(ctx, "UpdateDaySlotActivity", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx,
			`UPDATE day_slot_activities SET activity_id = ?, updated_at = ? WHERE id = ?`,
			activityID, s.timestamp(), id)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		var day string
		err = s.pool.queryRow(ctx, tx,
			`SELECT id, slot_template_id, day, activity_id FROM day_slot_activities WHERE id = ?`, id).
			Scan(&dsa.ID, &dsa.SlotTemplateID, &day, &dsa.ActivityID)
		if err != nil {
			return err
		}
		dsa.Day = event.WeekDay(day)
		activity, err := s.getActivity(ctx, tx, activityID)
		if err != nil {
			return err
		}
		dsa.Activity = &activity
		return nil
	})
	if err != nil {
		return event.DaySlotActivity{}, err
	}
	return dsa, nil
}

// DeleteDaySlotActivity removes a binding. The activity itself is kept.
func (s *Store) DeleteDaySlotActivity(ctx context.Context, id string) error {
	return s.write(ctx, "DeleteDaySlotActivity", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `DELETE FROM day_slot_activities WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

// ListVenueDayActivities returns every venue/day activity type.
func (s *Store) ListVenueDayActivities(ctx context.Context) ([]event.VenueDayActivity, error) {
	rows, err := s.pool.query(ctx, s.pool.db, `
		SELECT id, venue_id, day, activity_type FROM venue_day_activities ORDER BY venue_id, day, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []event.VenueDayActivity{}
	for rows.Next() {
		var (
			v            event.VenueDayActivity
			day          string
			activityType string
		)
		if err := rows.Scan(&v.ID, &v.VenueID, &day, &activityType); err != nil {
			return nil, mapError(err)
		}
		v.Day = event.WeekDay(day)
		v.ActivityType = event.ActivityType(activityType)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// PutVenueDayActivity upserts the activity type of a venue on a day.
func (s *Store) PutVenueDayActivity(ctx context.Context, venueID string, day event.WeekDay, activityType event.ActivityType) (event.VenueDayActivity, error) {
	out := event.VenueDayActivity{VenueID: venueID, Day: day, ActivityType: activityType}
	err := s.write(ctx, "PutVenueDayActivity", func(tx *sql.Tx) error {
		now := s.timestamp()
		_, err := s.pool.exec(ctx, tx, `
			INSERT INTO venue_day_activities (id, venue_id, day, activity_type, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (venue_id, day) DO UPDATE SET
				activity_type = excluded.activity_type,
				updated_at = excluded.updated_at`,
			s.newID(), venueID, string(day), string(activityType), now, now)
		if err != nil {
			return err
		}
		return s.pool.queryRow(ctx, tx,
			`SELECT id FROM venue_day_activities WHERE venue_id = ? AND day = ?`, venueID, string(day)).
			Scan(&out.ID)
	})
	if err != nil {
		return event.VenueDayActivity{}, err
	}
	return out, nil
}
