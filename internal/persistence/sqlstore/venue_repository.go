package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/example/hacktown-ops/internal/event"
)

const venueColumns = `id, code, name, location, capacity, description, nucleo, structure_type`

// Default slot grid applied by ApplyDefaultSlots: hourly from 10:00 to 18:00.
const (
	defaultSlotFirstHour = 10
	defaultSlotLastHour  = 18
)

// DefaultSlotsResult reports how many templates ApplyDefaultSlots created.
type DefaultSlotsResult struct {
	Message      string
	SlotsCreated int
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (event.Venue, error) {
	var (
		v           event.Venue
		description sql.NullString
		nucleo      sql.NullString
		structure   string
	)
	if err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Location, &v.Capacity, &description, &nucleo, &structure); err != nil {
		return event.Venue{}, err
	}
	v.Description = stringPointer(description)
	v.Nucleo = stringPointer(nucleo)
	v.StructureType = event.StructureType(structure)
	return v, nil
}

// ListVenues returns every venue ordered by code.
func (s *Store) ListVenues(ctx context.Context) ([]event.Venue, error) {
	return s.listVenues(ctx, s.pool.db)
}

func (s *Store) listVenues(ctx context.Context, q querier) ([]event.Venue, error) {
	rows, err := s.pool.query(ctx, q, `SELECT `+venueColumns+` FROM venues ORDER BY code, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	venues := []event.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, mapError(err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return venues, nil
}

func (s *Store) getVenue(ctx context.Context, q querier, id string) (event.Venue, error) {
	row := s.pool.queryRow(ctx, q, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	return scanVenue(row)
}

// CreateVenue inserts a venue, assigning an ID when empty.
func (s *Store) CreateVenue(ctx context.Context, venue event.Venue) (event.Venue, error) {
	if venue.ID == "" {
		venue.ID = s.newID()
	}
	err := s.write(ctx, "CreateVenue", func(tx *sql.Tx) error {
		return s.insertVenue(ctx, tx, venue)
	})
	if err != nil {
		return event.Venue{}, err
	}
	return venue, nil
}

func (s *Store) insertVenue(ctx context.Context, q querier, venue event.Venue) error {
	now := s.timestamp()
	_, err := s.pool.exec(ctx, q, `
		INSERT INTO venues (`+venueColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		venue.ID, venue.Code, venue.Name, venue.Location, venue.Capacity,
		nullableString(venue.Description), nullableString(venue.Nucleo), string(venue.StructureType),
		now, now)
	return err
}

func (s *Store) updateVenue(ctx context.Context, q querier, venue event.Venue) error {
	res, err := s.pool.exec(ctx, q, `
		UPDATE venues
		SET code = ?, name = ?, location = ?, capacity = ?, description = ?, nucleo = ?, structure_type = ?, updated_at = ?
		WHERE id = ?`,
		venue.Code, venue.Name, venue.Location, venue.Capacity,
		nullableString(venue.Description), nullableString(venue.Nucleo), string(venue.StructureType),
		s.timestamp(), venue.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateVenue replaces every field of an existing venue.
func (s *Store) UpdateVenue(ctx context.Context, venue event.Venue) (event.Venue, error) {
	err := s.write(ctx, "UpdateVenue", func(tx *sql.Tx) error {
		return s.updateVenue(ctx, tx, venue)
	})
	if err != nil {
		return event.Venue{}, err
	}
	return venue, nil
}

// DeleteVenue removes a venue. Slot templates still referencing it make the
// delete fail with a foreign key violation; checklists and day activities
// cascade.
func (s *Store) DeleteVenue(ctx context.Context, id string) error {
	return s.write(ctx, "DeleteVenue", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `DELETE FROM venues WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

// BulkUpsertVenues matches rows to existing venues by case-insensitive code,
// updating matches and inserting the rest, all in one transaction.
func (s *Store) BulkUpsertVenues(ctx context.Context, venues []event.Venue) ([]event.Venue, error) {
	var out []event.Venue
	err := s.write(ctx, "BulkUpsertVenues", func(tx *sql.Tx) error {
		out = make([]event.Venue, 0, len(venues))
		for _, venue := range venues {
			var existingID string
			err := s.pool.queryRow(ctx, tx,
				`SELECT id FROM venues WHERE LOWER(code) = LOWER(?)`, venue.Code).Scan(&existingID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if venue.ID == "" {
					venue.ID = s.newID()
				}
				if err := s.insertVenue(ctx, tx, venue); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				venue.ID = existingID
				if err := s.updateVenue(ctx, tx, venue); err != nil {
					return err
				}
			}
			out = append(out, venue)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// venueCodePrefix derives the three letter code prefix of a structure type:
// "auditorio" becomes "AUD", an empty type "VEN".
func venueCodePrefix(structureType event.StructureType) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(string(structureType)) {
		if unicode.Is(unicode.Mn, r) || !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "VEN"
	}
	return b.String()
}

// NextVenueCode returns PREFIX-NNN with NNN one above the highest number
// already used with that prefix.
func (s *Store) NextVenueCode(ctx context.Context, structureType event.StructureType) (string, error) {
	prefix := venueCodePrefix(structureType)
	rows, err := s.pool.query(ctx, s.pool.db,
		`SELECT code FROM venues WHERE UPPER(code) LIKE ?`, prefix+"-%")
	if err != nil {
		return "", mapError(err)
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", mapError(err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(code[len(prefix)+1:]))
		if err == nil && n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", mapError(err)
	}
	return fmt.Sprintf("%s-%03d", prefix, highest+1), nil
}

// ApplyDefaultSlots creates the hourly default templates for a venue, skipping
// hours that already have a template with the same start time.
func (s *Store) ApplyDefaultSlots(ctx context.Context, venueID string) (DefaultSlotsResult, error) {
	var created int
	err := s.write(ctx, "ApplyDefaultSlots", func(tx *sql.Tx) error {
		created = 0
		if _, err := s.getVenue(ctx, tx, venueID); err != nil {
			return err
		}
		existing := make(map[string]bool)
		templates, err := s.listSlotTemplates(ctx, tx, venueID)
		if err != nil {
			return err
		}
		for _, t := range templates {
			existing[t.StartTime] = true
		}
		for hour := defaultSlotFirstHour; hour < defaultSlotLastHour; hour++ {
			start := fmt.Sprintf("%02d:00", hour)
			if existing[start] {
				continue
			}
			template := event.SlotTemplate{
				ID:        s.newID(),
				VenueID:   venueID,
				StartTime: start,
				EndTime:   fmt.Sprintf("%02d:00", hour+1),
				Scope:     event.AllSelected(),
			}
			if err := s.insertSlotTemplate(ctx, tx, template); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return DefaultSlotsResult{}, err
	}
	return DefaultSlotsResult{
		Message:      fmt.Sprintf("%d slot(s) padrão criado(s)", created),
		SlotsCreated: created,
	}, nil
}
