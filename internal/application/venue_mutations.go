package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/hacktown-ops/internal/event"
)

const msgDuplicateCode = "Código já utilizado por outro venue"

func venueFromInput(input VenueInput) event.Venue {
	return event.Venue{
		Code:          strings.TrimSpace(input.Code),
		Name:          strings.TrimSpace(input.Name),
		Location:      strings.TrimSpace(input.Location),
		Capacity:      input.Capacity,
		Description:   normalizeOptionalString(input.Description),
		Nucleo:        normalizeOptionalString(input.Nucleo),
		StructureType: event.StructureType(strings.TrimSpace(string(input.StructureType))),
	}
}

func trimVenueInput(input VenueInput) VenueInput {
	input.Code = strings.TrimSpace(input.Code)
	input.Name = strings.TrimSpace(input.Name)
	input.Location = strings.TrimSpace(input.Location)
	return input
}

func findVenue(venues []event.Venue, id string) (event.Venue, int, bool) {
	for i, venue := range venues {
		if venue.ID == id {
			return venue, i, true
		}
	}
	return event.Venue{}, -1, false
}

func codeTaken(venues []event.Venue, code, exceptID string) bool {
	for _, venue := range venues {
		if venue.ID != exceptID && strings.EqualFold(venue.Code, code) {
			return true
		}
	}
	return false
}

// CreateVenue validates and persists a new venue. An empty code is taken from
// the backend's next code for the structure type.
func (f *Facade) CreateVenue(ctx context.Context, input VenueInput) (venue event.Venue, err error) {
	m := f.begin(ctx, "CreateVenue", "code", input.Code)
	defer func() { m.end(err, "venue created", "venue_id", venue.ID) }()
	if err = m.ready(); err != nil {
		return
	}

	input = trimVenueInput(input)
	if input.Code == "" {
		var code string
		code, err = f.backend.NextVenueCode(ctx, input.StructureType)
		if err != nil {
			err = mapBackendError("NextVenueCode", err)
			return
		}
		input.Code = code
	}

	snap := m.snapshot()
	vErr := validateVenueInput(f.validate, input)
	if input.Code != "" && codeTaken(snap.Venues, input.Code, "") {
		vErr.add("code", msgDuplicateCode)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	venue, err = f.backend.CreateVenue(ctx, venueFromInput(input))
	if err != nil {
		err = mapBackendError("CreateVenue", err)
		return
	}

	created := venue
	f.store.update("CreateVenue", func(s *Snapshot) {
		s.Venues = append(s.Venues, created)
	})
	m.reload()
	return
}

// UpdateVenue validates and replaces the fields of an existing venue.
func (f *Facade) UpdateVenue(ctx context.Context, id string, input VenueInput) (venue event.Venue, err error) {
	m := f.begin(ctx, "UpdateVenue", "venue_id", id)
	defer func() { m.end(err, "venue updated") }()
	if err = m.ready(); err != nil {
		return
	}

	snap := m.snapshot()
	if _, _, ok := findVenue(snap.Venues, id); !ok {
		err = ErrNotFound
		return
	}

	input = trimVenueInput(input)
	vErr := validateVenueInput(f.validate, input)
	if input.Code != "" && codeTaken(snap.Venues, input.Code, id) {
		vErr.add("code", msgDuplicateCode)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	next := venueFromInput(input)
	next.ID = id
	venue, err = f.backend.UpdateVenue(ctx, next)
	if err != nil {
		err = mapBackendError("UpdateVenue", err)
		return
	}

	updated := venue
	f.store.update("UpdateVenue", func(s *Snapshot) {
		if _, i, ok := findVenue(s.Venues, id); ok {
			s.Venues[i] = updated
		}
	})
	m.reload()
	return
}

// DeleteVenue removes a venue. It is blocked while slot templates reference
// the venue.
func (f *Facade) DeleteVenue(ctx context.Context, id string) (err error) {
	m := f.begin(ctx, "DeleteVenue", "venue_id", id)
	defer func() { m.end(err, "venue deleted") }()
	if err = m.ready(); err != nil {
		return
	}

	snap := m.snapshot()
	if _, _, ok := findVenue(snap.Venues, id); !ok {
		err = ErrNotFound
		return
	}

	dependents := 0
	for _, template := range snap.SlotTemplates {
		if template.VenueID == id {
			dependents++
		}
	}
	if dependents > 0 {
		err = &IntegrityError{
			Entity:     "venue",
			ID:         id,
			Dependents: dependents,
			Message:    fmt.Sprintf("Este venue possui %d slot(s). Remova os slots primeiro.", dependents),
		}
		return
	}

	if err = f.backend.DeleteVenue(ctx, id); err != nil {
		err = mapBackendError("DeleteVenue", err)
		return
	}

	f.store.update("DeleteVenue", func(s *Snapshot) {
		if _, i, ok := findVenue(s.Venues, id); ok {
			s.Venues = append(s.Venues[:i], s.Venues[i+1:]...)
		}
		kept := s.VenueDayActivities[:0]
		for _, vda := range s.VenueDayActivities {
			if vda.VenueID != id {
				kept = append(kept, vda)
			}
		}
		s.VenueDayActivities = kept
	})
	m.reload()
	return
}

// BulkUpsertVenues validates every row and hands the batch to the backend,
// which matches existing venues by code.
func (f *Facade) BulkUpsertVenues(ctx context.Context, inputs []VenueInput) (venues []event.Venue, err error) {
	m := f.begin(ctx, "BulkUpsertVenues", "rows", len(inputs))
	defer func() { m.end(err, "venues upserted", "count", len(venues)) }()
	if err = m.ready(); err != nil {
		return
	}
	if len(inputs) == 0 {
		err = fieldError("venues", msgRequired)
		return
	}

	vErr := &ValidationError{}
	rows := make([]event.Venue, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for i, input := range inputs {
		input = trimVenueInput(input)
		rowErr := validateVenueInput(f.validate, input)
		for field, msg := range rowErr.FieldErrors {
			vErr.add(fmt.Sprintf("venues[%d].%s", i, field), msg)
		}
		key := strings.ToLower(input.Code)
		if first, dup := seen[key]; dup && key != "" {
			vErr.add(fmt.Sprintf("venues[%d].code", i), fmt.Sprintf("Código repetido na linha %d", first+1))
		} else {
			seen[key] = i
		}
		rows = append(rows, venueFromInput(input))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	venues, err = f.backend.BulkUpsertVenues(ctx, rows)
	if err != nil {
		err = mapBackendError("BulkUpsertVenues", err)
		return
	}
	m.reload()
	return
}

// NextVenueCode asks the backend for the next free code of a structure type.
// An empty type yields a generic code.
func (f *Facade) NextVenueCode(ctx context.Context, structureType event.StructureType) (code string, err error) {
	logger := serviceLogger(ctx, f.logger, facadeServiceName, "NextVenueCode", "structure_type", string(structureType))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute next venue code", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if structureType != "" && !structureType.Valid() {
		err = fieldError("structureType", msgInvalidStruct)
		return
	}
	code, err = f.backend.NextVenueCode(ctx, structureType)
	if err != nil {
		err = mapBackendError("NextVenueCode", err)
		f.store.noteError(err)
	}
	return
}

// ApplyDefaultSlots asks the backend to create the default hourly templates
// for a venue.
func (f *Facade) ApplyDefaultSlots(ctx context.Context, venueID string) (result DefaultSlotsResult, err error) {
	m := f.begin(ctx, "ApplyDefaultSlots", "venue_id", venueID)
	defer func() { m.end(err, "default slots applied", "slots_created", result.SlotsCreated) }()
	if err = m.ready(); err != nil {
		return
	}
	if _, _, ok := findVenue(m.snapshot().Venues, venueID); !ok {
		err = ErrNotFound
		return
	}

	result, err = f.backend.ApplyDefaultSlots(ctx, venueID)
	if err != nil {
		err = mapBackendError("ApplyDefaultSlots", err)
		return
	}
	m.reload()
	return
}
