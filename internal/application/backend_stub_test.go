package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/persistence"
)

// backendStub is an in-memory Backend that records every call. Errors can be
// injected per operation name; when failOnce is set the error is returned a
// single time.
type backendStub struct {
	mu sync.Mutex

	config       event.EventConfig
	venues       []event.Venue
	templates    []event.SlotTemplate
	dsas         []event.DaySlotActivity
	vdas         []event.VenueDayActivity
	activities   map[string]event.Activity
	infra        map[string]event.Infrastructure
	audiovisual  map[string]event.Audiovisual
	nextCode     string
	errs         map[string]error
	failOnce     map[string]bool
	calls        []string
	nextID       int
	backgroundCh chan struct{}
}

func newBackendStub() *backendStub {
	return &backendStub{
		config:      event.EventConfig{ID: "cfg", SelectedDays: []event.WeekDay{event.Terca, event.Quarta}},
		activities:  make(map[string]event.Activity),
		infra:       make(map[string]event.Infrastructure),
		audiovisual: make(map[string]event.Audiovisual),
		nextCode:    "SAL-001",
		errs:        make(map[string]error),
		failOnce:    make(map[string]bool),
	}
}

func (b *backendStub) record(op string) error {
	b.calls = append(b.calls, op)
	err, ok := b.errs[op]
	if !ok {
		return nil
	}
	if b.failOnce[op] {
		delete(b.errs, op)
		delete(b.failOnce, op)
	}
	return err
}

func (b *backendStub) fail(op string, err error) {
	b.mu.Lock()
	b.errs[op] = err
	b.mu.Unlock()
}

func (b *backendStub) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *backendStub) count(op string) int {
	n := 0
	for _, call := range b.callLog() {
		if call == op {
			n++
		}
	}
	return n
}

func (b *backendStub) id(prefix string) string {
	b.nextID++
	return fmt.Sprintf("%s-%d", prefix, b.nextID)
}

func (b *backendStub) waitBackground(ctx context.Context) error {
	b.mu.Lock()
	ch := b.backgroundCh
	b.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *backendStub) GetEventConfig(ctx context.Context) (event.EventConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("GetEventConfig"); err != nil {
		return event.EventConfig{}, err
	}
	cfg := b.config
	cfg.SelectedDays = append([]event.WeekDay(nil), b.config.SelectedDays...)
	return cfg, nil
}

func (b *backendStub) PutEventConfig(ctx context.Context, days []event.WeekDay, startDate, endDate *string) (event.EventConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("PutEventConfig"); err != nil {
		return event.EventConfig{}, err
	}
	b.config.SelectedDays = append([]event.WeekDay(nil), days...)
	b.config.StartDate = startDate
	b.config.EndDate = endDate
	return b.config, nil
}

func (b *backendStub) ListVenues(ctx context.Context) ([]event.Venue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ListVenues"); err != nil {
		return nil, err
	}
	return append([]event.Venue(nil), b.venues...), nil
}

func (b *backendStub) CreateVenue(ctx context.Context, venue event.Venue) (event.Venue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("CreateVenue"); err != nil {
		return event.Venue{}, err
	}
	venue.ID = b.id("venue")
	b.venues = append(b.venues, venue)
	return venue, nil
}

func (b *backendStub) UpdateVenue(ctx context.Context, venue event.Venue) (event.Venue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpdateVenue"); err != nil {
		return event.Venue{}, err
	}
	for i := range b.venues {
		if b.venues[i].ID == venue.ID {
			b.venues[i] = venue
			return venue, nil
		}
	}
	return event.Venue{}, persistence.ErrNotFound
}

func (b *backendStub) DeleteVenue(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("DeleteVenue"); err != nil {
		return err
	}
	for i := range b.venues {
		if b.venues[i].ID == id {
			b.venues = append(b.venues[:i], b.venues[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (b *backendStub) BulkUpsertVenues(ctx context.Context, venues []event.Venue) ([]event.Venue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("BulkUpsertVenues"); err != nil {
		return nil, err
	}
	out := make([]event.Venue, 0, len(venues))
rows:
	for _, venue := range venues {
		for i := range b.venues {
			if b.venues[i].Code == venue.Code {
				venue.ID = b.venues[i].ID
				b.venues[i] = venue
				out = append(out, venue)
				continue rows
			}
		}
		venue.ID = b.id("venue")
		b.venues = append(b.venues, venue)
		out = append(out, venue)
	}
	return out, nil
}

func (b *backendStub) NextVenueCode(ctx context.Context, structureType event.StructureType) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("NextVenueCode"); err != nil {
		return "", err
	}
	return b.nextCode, nil
}

func (b *backendStub) ApplyDefaultSlots(ctx context.Context, venueID string) (DefaultSlotsResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ApplyDefaultSlots"); err != nil {
		return DefaultSlotsResult{}, err
	}
	b.templates = append(b.templates, event.SlotTemplate{
		ID: b.id("template"), VenueID: venueID, StartTime: "10:00", EndTime: "11:00", Scope: event.AllSelected(),
	})
	return DefaultSlotsResult{Message: "1 slot(s) criado(s)", SlotsCreated: 1}, nil
}

func (b *backendStub) ListSlotTemplates(ctx context.Context) ([]event.SlotTemplate, error) {
	if err := b.waitBackground(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ListSlotTemplates"); err != nil {
		return nil, err
	}
	return append([]event.SlotTemplate(nil), b.templates...), nil
}

func (b *backendStub) CreateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("CreateSlotTemplate"); err != nil {
		return event.SlotTemplate{}, err
	}
	template.ID = b.id("template")
	b.templates = append(b.templates, template)
	return template, nil
}

func (b *backendStub) UpdateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpdateSlotTemplate:" + template.ID); err != nil {
		return event.SlotTemplate{}, err
	}
	for i := range b.templates {
		if b.templates[i].ID == template.ID {
			b.templates[i] = template
			return template, nil
		}
	}
	return event.SlotTemplate{}, persistence.ErrNotFound
}

func (b *backendStub) DeleteSlotTemplate(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("DeleteSlotTemplate"); err != nil {
		return err
	}
	for i := range b.templates {
		if b.templates[i].ID == id {
			b.templates = append(b.templates[:i], b.templates[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (b *backendStub) ListDaySlotActivities(ctx context.Context) ([]event.DaySlotActivity, error) {
	if err := b.waitBackground(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ListDaySlotActivities"); err != nil {
		return nil, err
	}
	out := make([]event.DaySlotActivity, len(b.dsas))
	for i, dsa := range b.dsas {
		if activity, ok := b.activities[dsa.ActivityID]; ok {
			dsa.Activity = &activity
		}
		out[i] = dsa
	}
	return out, nil
}

func (b *backendStub) CreateDaySlotActivity(ctx context.Context, dsa event.DaySlotActivity) (event.DaySlotActivity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("CreateDaySlotActivity"); err != nil {
		return event.DaySlotActivity{}, err
	}
	dsa.ID = b.id("dsa")
	b.dsas = append(b.dsas, dsa)
	return dsa, nil
}

func (b *backendStub) UpdateDaySlotActivity(ctx context.Context, id, activityID string) (event.DaySlotActivity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpdateDaySlotActivity"); err != nil {
		return event.DaySlotActivity{}, err
	}
	for i := range b.dsas {
		if b.dsas[i].ID == id {
			b.dsas[i].ActivityID = activityID
			return b.dsas[i], nil
		}
	}
	return event.DaySlotActivity{}, persistence.ErrNotFound
}

func (b *backendStub) DeleteDaySlotActivity(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("DeleteDaySlotActivity"); err != nil {
		return err
	}
	for i := range b.dsas {
		if b.dsas[i].ID == id {
			b.dsas = append(b.dsas[:i], b.dsas[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (b *backendStub) ListVenueDayActivities(ctx context.Context) ([]event.VenueDayActivity, error) {
	if err := b.waitBackground(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ListVenueDayActivities"); err != nil {
		return nil, err
	}
	return append([]event.VenueDayActivity(nil), b.vdas...), nil
}

func (b *backendStub) PutVenueDayActivity(ctx context.Context, venueID string, day event.WeekDay, activityType event.ActivityType) (event.VenueDayActivity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("PutVenueDayActivity"); err != nil {
		return event.VenueDayActivity{}, err
	}
	for i := range b.vdas {
		if b.vdas[i].VenueID == venueID && b.vdas[i].Day == day {
			b.vdas[i].ActivityType = activityType
			return b.vdas[i], nil
		}
	}
	vda := event.VenueDayActivity{ID: b.id("vda"), VenueID: venueID, Day: day, ActivityType: activityType}
	b.vdas = append(b.vdas, vda)
	return vda, nil
}

func (b *backendStub) CreateActivity(ctx context.Context, activity event.Activity) (event.Activity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("CreateActivity"); err != nil {
		return event.Activity{}, err
	}
	activity.ID = b.id("activity")
	b.activities[activity.ID] = activity
	return activity, nil
}

func (b *backendStub) UpdateActivity(ctx context.Context, activity event.Activity) (event.Activity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpdateActivity"); err != nil {
		return event.Activity{}, err
	}
	if _, ok := b.activities[activity.ID]; !ok {
		return event.Activity{}, persistence.ErrNotFound
	}
	b.activities[activity.ID] = activity
	return activity, nil
}

func (b *backendStub) ListInfrastructure(ctx context.Context) ([]event.Infrastructure, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ListInfrastructure"); err != nil {
		return nil, err
	}
	out := make([]event.Infrastructure, 0, len(b.infra))
	for _, item := range b.infra {
		out = append(out, item)
	}
	return out, nil
}

func (b *backendStub) GetInfrastructure(ctx context.Context, venueID string) (event.Infrastructure, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("GetInfrastructure"); err != nil {
		return event.Infrastructure{}, err
	}
	item, ok := b.infra[venueID]
	if !ok {
		return event.Infrastructure{}, persistence.ErrNotFound
	}
	return item, nil
}

func (b *backendStub) UpsertInfrastructure(ctx context.Context, item event.Infrastructure) (event.Infrastructure, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpsertInfrastructure"); err != nil {
		return event.Infrastructure{}, err
	}
	b.infra[item.VenueID] = item
	return item, nil
}

func (b *backendStub) BatchUpsertInfrastructure(ctx context.Context, items []event.Infrastructure) ([]event.Infrastructure, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("BatchUpsertInfrastructure"); err != nil {
		return nil, err
	}
	for _, item := range items {
		b.infra[item.VenueID] = item
	}
	return items, nil
}

func (b *backendStub) DeleteInfrastructure(ctx context.Context, venueID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("DeleteInfrastructure"); err != nil {
		return err
	}
	delete(b.infra, venueID)
	return nil
}

func (b *backendStub) ListAudiovisual(ctx context.Context) ([]event.Audiovisual, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ListAudiovisual"); err != nil {
		return nil, err
	}
	out := make([]event.Audiovisual, 0, len(b.audiovisual))
	for _, item := range b.audiovisual {
		out = append(out, item)
	}
	return out, nil
}

func (b *backendStub) GetAudiovisual(ctx context.Context, venueID string) (event.Audiovisual, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("GetAudiovisual"); err != nil {
		return event.Audiovisual{}, err
	}
	item, ok := b.audiovisual[venueID]
	if !ok {
		return event.Audiovisual{}, persistence.ErrNotFound
	}
	return item, nil
}

func (b *backendStub) UpsertAudiovisual(ctx context.Context, item event.Audiovisual) (event.Audiovisual, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("UpsertAudiovisual"); err != nil {
		return event.Audiovisual{}, err
	}
	b.audiovisual[item.VenueID] = item
	return item, nil
}

func (b *backendStub) BatchUpsertAudiovisual(ctx context.Context, items []event.Audiovisual) ([]event.Audiovisual, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("BatchUpsertAudiovisual"); err != nil {
		return nil, err
	}
	for _, item := range items {
		b.audiovisual[item.VenueID] = item
	}
	return items, nil
}

func (b *backendStub) DeleteAudiovisual(ctx context.Context, venueID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("DeleteAudiovisual"); err != nil {
		return err
	}
	delete(b.audiovisual, venueID)
	return nil
}
