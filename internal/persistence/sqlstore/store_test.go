package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/persistence"
)

type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceIDs) id() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("id-%03d", s.next)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ids := &sequenceIDs{}
	now := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	store, err := Open(context.Background(),
		DefaultSQLiteConfig(filepath.Join(t.TempDir(), "hacktown.db")),
		WithIDGenerator(ids.id),
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func mustCreateVenue(t *testing.T, store *Store, code, name string, structure event.StructureType) event.Venue {
	t.Helper()
	venue, err := store.CreateVenue(context.Background(), event.Venue{
		Code: code, Name: name, Location: "Centro", Capacity: 80, StructureType: structure,
	})
	if err != nil {
		t.Fatalf("CreateVenue(%s) failed: %v", code, err)
	}
	return venue
}

func TestStore_EventConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	cfg, err := store.GetEventConfig(ctx)
	if err != nil {
		t.Fatalf("GetEventConfig failed: %v", err)
	}
	if cfg.ID != eventConfigID || len(cfg.SelectedDays) != 0 {
		t.Fatalf("expected empty default config, got %+v", cfg)
	}

	start := "2026-11-03"
	saved, err := store.PutEventConfig(ctx, []event.WeekDay{event.Quinta, event.Terca, event.Quinta}, &start, nil)
	if err != nil {
		t.Fatalf("PutEventConfig failed: %v", err)
	}
	if !event.EqualDaySets(saved.SelectedDays, []event.WeekDay{event.Terca, event.Quinta}) {
		t.Fatalf("expected sorted unique days, got %v", saved.SelectedDays)
	}
	if saved.StartDate == nil || *saved.StartDate != start || saved.EndDate != nil {
		t.Fatalf("expected start date only, got %+v", saved)
	}

	if _, err := store.PutEventConfig(ctx, []event.WeekDay{event.Sexta}, nil, nil); err != nil {
		t.Fatalf("second PutEventConfig failed: %v", err)
	}
	cfg, err = store.GetEventConfig(ctx)
	if err != nil {
		t.Fatalf("GetEventConfig failed: %v", err)
	}
	if len(cfg.SelectedDays) != 1 || cfg.SelectedDays[0] != event.Sexta || cfg.StartDate != nil {
		t.Fatalf("expected replaced config, got %+v", cfg)
	}
}

func TestStore_Venues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	venue := mustCreateVenue(t, store, "SAL-001", "Sala Azul", event.StructureSala)
	if venue.ID == "" {
		t.Fatalf("expected generated ID")
	}

	t.Run("duplicate code ignores case", func(t *testing.T) {
		_, err := store.CreateVenue(ctx, event.Venue{Code: "sal-001", Name: "Outra"})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("negative capacity violates constraint", func(t *testing.T) {
		_, err := store.CreateVenue(ctx, event.Venue{Code: "SAL-009", Name: "Errada", Capacity: -1})
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("update and list", func(t *testing.T) {
		nucleo := "Centro"
		venue.Name = "Sala Azul Renovada"
		venue.Nucleo = &nucleo
		if _, err := store.UpdateVenue(ctx, venue); err != nil {
			t.Fatalf("UpdateVenue failed: %v", err)
		}
		venues, err := store.ListVenues(ctx)
		if err != nil {
			t.Fatalf("ListVenues failed: %v", err)
		}
		if len(venues) != 1 || venues[0].Name != "Sala Azul Renovada" || venues[0].NucleoValue() != "Centro" {
			t.Fatalf("expected updated venue, got %+v", venues)
		}
	})

	t.Run("update unknown venue", func(t *testing.T) {
		_, err := store.UpdateVenue(ctx, event.Venue{ID: "missing", Code: "X-1", Name: "X"})
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_DeleteVenueWithTemplatesFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	venue := mustCreateVenue(t, store, "PAL-001", "Palco", event.StructurePalco)
	if _, err := store.CreateSlotTemplate(ctx, event.SlotTemplate{
		VenueID: venue.ID, StartTime: "10:00", EndTime: "11:00", Scope: event.AllSelected(),
	}); err != nil {
		t.Fatalf("CreateSlotTemplate failed: %v", err)
	}

	if err := store.DeleteVenue(ctx, venue.ID); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
	if err := store.DeleteVenue(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_BulkUpsertVenues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	existing := mustCreateVenue(t, store, "SAL-001", "Sala Azul", event.StructureSala)

	out, err := store.BulkUpsertVenues(ctx, []event.Venue{
		{Code: "sal-001", Name: "Sala Azul 2", Capacity: 90},
		{Code: "AUD-001", Name: "Auditório", Capacity: 300, StructureType: event.StructureAuditorio},
	})
	if err != nil {
		t.Fatalf("BulkUpsertVenues failed: %v", err)
	}
	if out[0].ID != existing.ID {
		t.Fatalf("expected code match to reuse %s, got %s", existing.ID, out[0].ID)
	}

	venues, err := store.ListVenues(ctx)
	if err != nil {
		t.Fatalf("ListVenues failed: %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("expected 2 venues, got %d", len(venues))
	}
	for _, v := range venues {
		if v.ID == existing.ID && v.Name != "Sala Azul 2" {
			t.Fatalf("expected updated name, got %q", v.Name)
		}
	}
}

func TestStore_NextVenueCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	mustCreateVenue(t, store, "AUD-001", "A", event.StructureAuditorio)
	mustCreateVenue(t, store, "AUD-007", "B", event.StructureAuditorio)
	mustCreateVenue(t, store, "SAL-002", "C", event.StructureSala)

	tests := []struct {
		structure event.StructureType
		want      string
	}{
		{event.StructureAuditorio, "AUD-008"},
		{event.StructureSala, "SAL-003"},
		{event.StructurePalco, "PAL-001"},
		{"", "VEN-001"},
	}
	for _, tt := range tests {
		got, err := store.NextVenueCode(ctx, tt.structure)
		if err != nil {
			t.Fatalf("NextVenueCode(%q) failed: %v", tt.structure, err)
		}
		if got != tt.want {
			t.Fatalf("NextVenueCode(%q): expected %s, got %s", tt.structure, tt.want, got)
		}
	}
}

func TestVenueCodePrefix(t *testing.T) {
	t.Parallel()

	cases := map[event.StructureType]string{
		event.StructureEspaco:    "ESP",
		event.StructureCoworking: "COW",
		"área":                   "ARE",
		"":                       "VEN",
	}
	for in, want := range cases {
		if got := venueCodePrefix(in); got != want {
			t.Fatalf("venueCodePrefix(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestStore_ApplyDefaultSlots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	venue := mustCreateVenue(t, store, "SAL-001", "Sala", event.StructureSala)
	if _, err := store.CreateSlotTemplate(ctx, event.SlotTemplate{
		VenueID: venue.ID, StartTime: "12:00", EndTime: "13:30", Scope: event.AllSelected(),
	}); err != nil {
		t.Fatalf("CreateSlotTemplate failed: %v", err)
	}

	result, err := store.ApplyDefaultSlots(ctx, venue.ID)
	if err != nil {
		t.Fatalf("ApplyDefaultSlots failed: %v", err)
	}
	if result.SlotsCreated != 7 {
		t.Fatalf("expected 7 new slots, got %d (%s)", result.SlotsCreated, result.Message)
	}

	again, err := store.ApplyDefaultSlots(ctx, venue.ID)
	if err != nil {
		t.Fatalf("second ApplyDefaultSlots failed: %v", err)
	}
	if again.SlotsCreated != 0 {
		t.Fatalf("expected idempotent apply, got %d", again.SlotsCreated)
	}

	if _, err := store.ApplyDefaultSlots(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SlotTemplatesRoundTripScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	venue := mustCreateVenue(t, store, "SAL-001", "Sala", event.StructureSala)

	all, err := store.CreateSlotTemplate(ctx, event.SlotTemplate{
		VenueID: venue.ID, StartTime: "09:00", EndTime: "10:00", Scope: event.AllSelected(),
	})
	if err != nil {
		t.Fatalf("CreateSlotTemplate failed: %v", err)
	}
	explicit, err := store.CreateSlotTemplate(ctx, event.SlotTemplate{
		VenueID: venue.ID, StartTime: "14:00", EndTime: "15:00", Scope: event.Explicit(event.Sexta, event.Terca),
	})
	if err != nil {
		t.Fatalf("CreateSlotTemplate failed: %v", err)
	}
	empty, err := store.CreateSlotTemplate(ctx, event.SlotTemplate{
		VenueID: venue.ID, StartTime: "16:00", EndTime: "17:00", Scope: event.Explicit(),
	})
	if err != nil {
		t.Fatalf("CreateSlotTemplate failed: %v", err)
	}

	templates, err := store.ListSlotTemplates(ctx)
	if err != nil {
		t.Fatalf("ListSlotTemplates failed: %v", err)
	}
	byID := make(map[string]event.SlotTemplate)
	for _, tpl := range templates {
		byID[tpl.ID] = tpl
	}
	if !byID[all.ID].Scope.IsAllSelected() {
		t.Fatalf("expected AllSelected scope, got %+v", byID[all.ID].Scope)
	}
	if !byID[explicit.ID].Scope.Equal(event.Explicit(event.Terca, event.Sexta)) {
		t.Fatalf("expected explicit terca/sexta, got %v", byID[explicit.ID].Scope.Days())
	}
	if byID[empty.ID].Scope.IsAllSelected() || len(byID[empty.ID].Scope.Days()) != 0 {
		t.Fatalf("expected empty explicit scope to survive, got %+v", byID[empty.ID].Scope)
	}

	explicit.Scope = event.AllSelected()
	explicit.EndTime = "15:30"
	if _, err := store.UpdateSlotTemplate(ctx, explicit); err != nil {
		t.Fatalf("UpdateSlotTemplate failed: %v", err)
	}
	if _, err := store.UpdateSlotTemplate(ctx, event.SlotTemplate{ID: "missing", VenueID: venue.ID}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DaySlotActivities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	venue := mustCreateVenue(t, store, "SAL-001", "Sala", event.StructureSala)
	tpl, err := store.CreateSlotTemplate(ctx, event.SlotTemplate{
		VenueID: venue.ID, StartTime: "10:00", EndTime: "11:00", Scope: event.AllSelected(),
	})
	if err != nil {
		t.Fatalf("CreateSlotTemplate failed: %v", err)
	}
	talk, err := store.CreateActivity(ctx, event.Activity{Title: "Abertura", Speaker: "Ana"})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}

	dsa, err := store.CreateDaySlotActivity(ctx, event.DaySlotActivity{
		SlotTemplateID: tpl.ID, Day: event.Quarta, ActivityID: talk.ID,
	})
	if err != nil {
		t.Fatalf("CreateDaySlotActivity failed: %v", err)
	}
	if dsa.Activity == nil || dsa.Activity.Title != "Abertura" {
		t.Fatalf("expected embedded activity, got %+v", dsa.Activity)
	}

	_, err = store.CreateDaySlotActivity(ctx, event.DaySlotActivity{
		SlotTemplateID: tpl.ID, Day: event.Quarta, ActivityID: talk.ID,
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected duplicate pair rejection, got %v", err)
	}

	workshop, err := store.CreateActivity(ctx, event.Activity{Title: "Oficina", Speaker: "Bia"})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	updated, err := store.UpdateDaySlotActivity(ctx, dsa.ID, workshop.ID)
	if err != nil {
		t.Fatalf("UpdateDaySlotActivity failed: %v", err)
	}
	if updated.Day != event.Quarta || updated.Activity == nil || updated.Activity.Title != "Oficina" {
		t.Fatalf("expected rebound activity, got %+v", updated)
	}

	list, err := store.ListDaySlotActivities(ctx)
	if err != nil {
		t.Fatalf("ListDaySlotActivities failed: %v", err)
	}
	if len(list) != 1 || list[0].Activity == nil || list[0].Activity.ID != workshop.ID {
		t.Fatalf("expected one binding to the workshop, got %+v", list)
	}

	if err := store.DeleteSlotTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("DeleteSlotTemplate failed: %v", err)
	}
	list, err = store.ListDaySlotActivities(ctx)
	if err != nil {
		t.Fatalf("ListDaySlotActivities failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected bindings to cascade, got %d", len(list))
	}
	if _, err := store.GetActivity(ctx, talk.ID); err != nil {
		t.Fatalf("expected activity to survive, got %v", err)
	}
}

func TestStore_PutVenueDayActivityUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	venue := mustCreateVenue(t, store, "PAL-001", "Palco", event.StructurePalco)

	first, err := store.PutVenueDayActivity(ctx, venue.ID, event.Sexta, event.ActivityMusica)
	if err != nil {
		t.Fatalf("PutVenueDayActivity failed: %v", err)
	}
	second, err := store.PutVenueDayActivity(ctx, venue.ID, event.Sexta, event.ActivityWorkshop)
	if err != nil {
		t.Fatalf("PutVenueDayActivity failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected upsert to keep id %s, got %s", first.ID, second.ID)
	}

	list, err := store.ListVenueDayActivities(ctx)
	if err != nil {
		t.Fatalf("ListVenueDayActivities failed: %v", err)
	}
	if len(list) != 1 || list[0].ActivityType != event.ActivityWorkshop {
		t.Fatalf("expected single workshop row, got %+v", list)
	}
}

func TestStore_Checklists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	a := mustCreateVenue(t, store, "SAL-001", "A", event.StructureSala)
	b := mustCreateVenue(t, store, "SAL-002", "B", event.StructureSala)

	if _, err := store.GetInfrastructure(ctx, a.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.UpsertInfrastructure(ctx, event.Infrastructure{VenueID: a.ID, Alvara: true, Status: "pendente"}); err != nil {
		t.Fatalf("UpsertInfrastructure failed: %v", err)
	}
	if _, err := store.BatchUpsertInfrastructure(ctx, []event.Infrastructure{
		{VenueID: a.ID, Alvara: true, AlvaraProvidenciado: true},
		{VenueID: b.ID, Avcb: true},
	}); err != nil {
		t.Fatalf("BatchUpsertInfrastructure failed: %v", err)
	}
	got, err := store.GetInfrastructure(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetInfrastructure failed: %v", err)
	}
	if !got.AlvaraProvidenciado || got.Status != "" {
		t.Fatalf("expected batch to replace the row, got %+v", got)
	}

	_, err = store.BatchUpsertInfrastructure(ctx, []event.Infrastructure{
		{VenueID: b.ID, Reforma: true},
		{VenueID: "missing"},
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
	got, err = store.GetInfrastructure(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetInfrastructure failed: %v", err)
	}
	if got.Reforma {
		t.Fatalf("expected failed batch to roll back")
	}

	if _, err := store.UpsertAudiovisual(ctx, event.Audiovisual{VenueID: b.ID, Microfone: true, Tela: true}); err != nil {
		t.Fatalf("UpsertAudiovisual failed: %v", err)
	}
	av, err := store.ListAudiovisual(ctx)
	if err != nil {
		t.Fatalf("ListAudiovisual failed: %v", err)
	}
	if len(av) != 1 || !av[0].Microfone || !av[0].Tela {
		t.Fatalf("expected audiovisual row, got %+v", av)
	}

	if err := store.DeleteVenue(ctx, b.ID); err != nil {
		t.Fatalf("DeleteVenue failed: %v", err)
	}
	if _, err := store.GetAudiovisual(ctx, b.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected checklist to cascade, got %v", err)
	}
	if err := store.DeleteInfrastructure(ctx, a.ID); err != nil {
		t.Fatalf("DeleteInfrastructure failed: %v", err)
	}
	if err := store.DeleteInfrastructure(ctx, a.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
