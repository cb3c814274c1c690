package application

import (
	"context"
	"errors"

	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/persistence"
)

// ConfigBackend persists the event configuration singleton.
type ConfigBackend interface {
	GetEventConfig(ctx context.Context) (event.EventConfig, error)
	PutEventConfig(ctx context.Context, selectedDays []event.WeekDay, startDate, endDate *string) (event.EventConfig, error)
}

// VenueBackend persists venues.
type VenueBackend interface {
	ListVenues(ctx context.Context) ([]event.Venue, error)
	CreateVenue(ctx context.Context, venue event.Venue) (event.Venue, error)
	UpdateVenue(ctx context.Context, venue event.Venue) (event.Venue, error)
	DeleteVenue(ctx context.Context, id string) error
	BulkUpsertVenues(ctx context.Context, venues []event.Venue) ([]event.Venue, error)
	NextVenueCode(ctx context.Context, structureType event.StructureType) (string, error)
	ApplyDefaultSlots(ctx context.Context, venueID string) (DefaultSlotsResult, error)
}

// SlotBackend persists slot templates and their per-day activity bindings.
type SlotBackend interface {
	ListSlotTemplates(ctx context.Context) ([]event.SlotTemplate, error)
	CreateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error)
	UpdateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error)
	DeleteSlotTemplate(ctx context.Context, id string) error

	ListDaySlotActivities(ctx context.Context) ([]event.DaySlotActivity, error)
	CreateDaySlotActivity(ctx context.Context, dsa event.DaySlotActivity) (event.DaySlotActivity, error)
	UpdateDaySlotActivity(ctx context.Context, id, activityID string) (event.DaySlotActivity, error)
	DeleteDaySlotActivity(ctx context.Context, id string) error

	ListVenueDayActivities(ctx context.Context) ([]event.VenueDayActivity, error)
	PutVenueDayActivity(ctx context.Context, venueID string, day event.WeekDay, activityType event.ActivityType) (event.VenueDayActivity, error)
}

// ActivityBackend persists activities.
type ActivityBackend interface {
	CreateActivity(ctx context.Context, activity event.Activity) (event.Activity, error)
	UpdateActivity(ctx context.Context, activity event.Activity) (event.Activity, error)
}

// ChecklistBackend persists venue infrastructure and audiovisual checklists.
type ChecklistBackend interface {
	ListInfrastructure(ctx context.Context) ([]event.Infrastructure, error)
	GetInfrastructure(ctx context.Context, venueID string) (event.Infrastructure, error)
	UpsertInfrastructure(ctx context.Context, item event.Infrastructure) (event.Infrastructure, error)
	BatchUpsertInfrastructure(ctx context.Context, items []event.Infrastructure) ([]event.Infrastructure, error)
	DeleteInfrastructure(ctx context.Context, venueID string) error

	ListAudiovisual(ctx context.Context) ([]event.Audiovisual, error)
	GetAudiovisual(ctx context.Context, venueID string) (event.Audiovisual, error)
	UpsertAudiovisual(ctx context.Context, item event.Audiovisual) (event.Audiovisual, error)
	BatchUpsertAudiovisual(ctx context.Context, items []event.Audiovisual) ([]event.Audiovisual, error)
	DeleteAudiovisual(ctx context.Context, venueID string) error
}

// Backend is the persistence collaborator behind the store and the façade.
// Both the local SQL store and the REST client implement it.
type Backend interface {
	ConfigBackend
	VenueBackend
	SlotBackend
	ActivityBackend
	ChecklistBackend
}

func mapBackendError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case IsSessionError(err):
		return err
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return &BackendError{Operation: operation, Err: err}
}
