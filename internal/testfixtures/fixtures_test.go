package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/expansion"
)

func TestHacktownDataset(t *testing.T) {
	t.Parallel()

	d := Hacktown()
	if len(d.Venues) != 4 || len(d.SlotTemplates) != 5 || len(d.DaySlotActivities) != 4 {
		t.Fatalf("unexpected dataset shape: %d venues, %d templates, %d bindings",
			len(d.Venues), len(d.SlotTemplates), len(d.DaySlotActivities))
	}

	palco, ok := d.VenueByCode("PAL-001")
	if !ok || palco.Capacity != 500 || palco.StructureType != event.StructurePalco || palco.NucleoValue() != "Música" {
		t.Fatalf("unexpected palco fixture: %+v", palco)
	}
	if _, ok := d.VenueByCode("XXX-999"); ok {
		t.Fatal("expected unknown code to be missing")
	}

	slots := expansion.Expand(d.SlotTemplates, d.Config.SelectedDays, d.DaySlotActivities)
	if len(slots) != 12 {
		t.Fatalf("expected 12 computed slots, got %d", len(slots))
	}
	booked := 0
	for _, slot := range slots {
		if slot.Activity != nil {
			booked++
		}
	}
	if booked != 4 {
		t.Fatalf("expected every binding to land on a computed slot, got %d", booked)
	}
}

func TestSQLiteHarness_SeedAndLoad(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	harness := NewSQLiteHarness(t, clock)
	d := Hacktown()
	harness.Seed(t, d)

	ctx := context.Background()
	app := application.NewAppContext(harness.Backend(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := app.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := app.Teardown(ctx); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}

	if got := len(app.Store.Venues()); got != len(d.Venues) {
		t.Fatalf("expected %d venues, got %d", len(d.Venues), got)
	}
	if got := len(app.Store.ComputedSlots(nil)); got != 12 {
		t.Fatalf("expected 12 computed slots after the background load, got %d", got)
	}

	sexta := event.Sexta
	var opening *event.Activity
	for _, slot := range app.Store.ComputedSlots(&sexta) {
		if slot.Activity != nil && slot.Activity.Title == "Abertura" {
			opening = slot.Activity
		}
	}
	if opening == nil || opening.Speaker != "Banda da Casa" {
		t.Fatalf("expected the opening show on sexta, got %+v", opening)
	}
}
