package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/persistence/sqlstore"
)

// SQLiteHarness is a migrated SQLite store in a per-test temp directory.
type SQLiteHarness struct {
	Store *sqlstore.Store
	Path  string
}

// NewSQLiteHarness opens the database and registers its Close with tb.
// The store uses clock and a "row" id sequence unless opts override them.
func NewSQLiteHarness(tb testing.TB, clock *Clock, opts ...sqlstore.Option) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "hacktown.db")
	defaults := []sqlstore.Option{
		sqlstore.WithClock(clock.NowFunc()),
		sqlstore.WithIDGenerator(NewIDGenerator("row").Next),
		sqlstore.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	store, err := sqlstore.Open(context.Background(), sqlstore.DefaultSQLiteConfig(path), append(defaults, opts...)...)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() {
		if err := store.Close(); err != nil {
			tb.Errorf("failed to close sqlite store: %v", err)
		}
	})
	return &SQLiteHarness{Store: store, Path: path}
}

// Seed writes every row of d, keeping the dataset's ids.
func (h *SQLiteHarness) Seed(tb testing.TB, d *Dataset) {
	tb.Helper()
	ctx := context.Background()

	if _, err := h.Store.PutEventConfig(ctx, d.Config.SelectedDays, d.Config.StartDate, d.Config.EndDate); err != nil {
		tb.Fatalf("seed event config: %v", err)
	}
	for _, venue := range d.Venues {
		if _, err := h.Store.CreateVenue(ctx, venue); err != nil {
			tb.Fatalf("seed venue %s: %v", venue.Code, err)
		}
	}
	for _, template := range d.SlotTemplates {
		if _, err := h.Store.CreateSlotTemplate(ctx, template); err != nil {
			tb.Fatalf("seed slot template %s: %v", template.ID, err)
		}
	}
	for _, activity := range d.Activities {
		if _, err := h.Store.CreateActivity(ctx, activity); err != nil {
			tb.Fatalf("seed activity %s: %v", activity.ID, err)
		}
	}
	for _, binding := range d.DaySlotActivities {
		binding.Activity = nil
		if _, err := h.Store.CreateDaySlotActivity(ctx, binding); err != nil {
			tb.Fatalf("seed day slot activity %s: %v", binding.ID, err)
		}
	}
	for _, vda := range d.VenueDayActivities {
		if _, err := h.Store.PutVenueDayActivity(ctx, vda.VenueID, vda.Day, vda.ActivityType); err != nil {
			tb.Fatalf("seed venue day activity %s: %v", vda.ID, err)
		}
	}
}

// Backend exposes the harness store to the application layer.
func (h *SQLiteHarness) Backend() application.Backend {
	return storeBackend{Store: h.Store}
}

type storeBackend struct {
	*sqlstore.Store
}

func (b storeBackend) ApplyDefaultSlots(ctx context.Context, venueID string) (application.DefaultSlotsResult, error) {
	result, err := b.Store.ApplyDefaultSlots(ctx, venueID)
	if err != nil {
		return application.DefaultSlotsResult{}, err
	}
	return application.DefaultSlotsResult{Message: result.Message, SlotsCreated: result.SlotsCreated}, nil
}
