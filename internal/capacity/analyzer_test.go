package capacity

import (
	"errors"
	"testing"

	"github.com/example/hacktown-ops/internal/event"
)

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	s, err := event.ParseClock(start)
	if err != nil {
		t.Fatalf("parse %q: %v", start, err)
	}
	e, err := event.ParseClock(end)
	if err != nil {
		t.Fatalf("parse %q: %v", end, err)
	}
	return Window{Start: s, End: e}
}

func TestAnalyzeContainment(t *testing.T) {
	t.Parallel()

	venues := []event.Venue{{ID: "v1", Capacity: 100}}
	templates := []event.SlotTemplate{{ID: "t1", VenueID: "v1", StartTime: "09:00", EndTime: "11:00"}}

	tests := []struct {
		name      string
		start     string
		end       string
		wantSlots int
	}{
		{name: "fully contained", start: "08:00", end: "12:00", wantSlots: 1},
		{name: "starts before window", start: "09:30", end: "11:00", wantSlots: 0},
		{name: "ends after window", start: "08:00", end: "10:00", wantSlots: 0},
		{name: "exact bounds", start: "09:00", end: "11:00", wantSlots: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := Analyze(templates, venues, mustWindow(t, tt.start, tt.end))
			if result.SlotCount != tt.wantSlots {
				t.Fatalf("expected %d slots, got %d", tt.wantSlots, result.SlotCount)
			}
		})
	}
}

func TestAnalyzeStatistics(t *testing.T) {
	t.Parallel()

	venues := []event.Venue{
		{ID: "v1", Capacity: 100},
		{ID: "v2", Capacity: 250},
	}
	templates := []event.SlotTemplate{
		{ID: "t1", VenueID: "v1", StartTime: "10:00", EndTime: "11:00"},
		{ID: "t2", VenueID: "v2", StartTime: "10:00", EndTime: "11:00"},
		{ID: "t3", VenueID: "v1", StartTime: "10:00", EndTime: "11:00", Scope: event.Explicit(event.Sabado)},
		{ID: "t4", VenueID: "v1", StartTime: "14:00", EndTime: "15:00"},
		{ID: "t5", VenueID: "ghost", StartTime: "14:00", EndTime: "15:00"},
		{ID: "t6", VenueID: "v2", StartTime: "bad", EndTime: "15:00"},
		{ID: "t7", VenueID: "v2", StartTime: "17:00", EndTime: "19:00"},
	}

	result := Analyze(templates, venues, DefaultWindow)

	if result.SlotCount != 5 {
		t.Fatalf("expected 5 contained templates, got %d", result.SlotCount)
	}
	if result.TotalPeriodCapacity != 550 {
		t.Fatalf("expected total 550, got %d", result.TotalPeriodCapacity)
	}
	if len(result.PerTimeKey) != 2 {
		t.Fatalf("expected 2 time keys, got %+v", result.PerTimeKey)
	}
	first, second := result.PerTimeKey[0], result.PerTimeKey[1]
	if first.Key != "10:00-11:00" || first.Capacity != 450 || first.Venues != 2 || len(first.TemplateIDs) != 3 {
		t.Fatalf("unexpected first key: %+v", first)
	}
	if second.Key != "14:00-15:00" || second.Capacity != 100 || second.Venues != 1 {
		t.Fatalf("unexpected second key: %+v", second)
	}
	if result.Average != 275 || result.Max != 450 || result.Min != 100 {
		t.Fatalf("unexpected stats: avg=%d max=%d min=%d", result.Average, result.Max, result.Min)
	}
}

func TestAnalyzeEmptySelection(t *testing.T) {
	t.Parallel()

	result := Analyze(nil, nil, DefaultWindow)
	if result.TotalPeriodCapacity != 0 || result.Average != 0 || result.Max != 0 || result.Min != 0 || result.SlotCount != 0 {
		t.Fatalf("expected zero result, got %+v", result)
	}
	if result.PerTimeKey == nil || len(result.PerTimeKey) != 0 {
		t.Fatalf("expected empty non-nil groups")
	}
}

func TestNewWindow(t *testing.T) {
	t.Parallel()

	if _, err := NewWindow(600, 1080); err != nil {
		t.Fatalf("expected valid window, got %v", err)
	}
	if _, err := NewWindow(600, 631); err != nil {
		t.Fatalf("expected 31 minute window to be accepted, got %v", err)
	}
	for _, bounds := range [][2]int{{600, 630}, {700, 600}, {300, 600}, {600, 1440}} {
		if _, err := NewWindow(bounds[0], bounds[1]); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("window %v: expected ErrInvalidWindow, got %v", bounds, err)
		}
	}
	if DefaultWindow.String() != "10:00-18:00" {
		t.Fatalf("unexpected default window %s", DefaultWindow)
	}
}
