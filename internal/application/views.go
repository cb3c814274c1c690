package application

import (
	"github.com/example/hacktown-ops/internal/aggregate"
	"github.com/example/hacktown-ops/internal/capacity"
	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/expansion"
)

// Views are recomputed from the installed snapshot on every call. Until the
// store is ready they return empty results.

// SelectedDays returns the event days in canonical order.
func (s *Store) SelectedDays() []event.WeekDay {
	snap, ok := s.Snapshot()
	if !ok {
		return []event.WeekDay{}
	}
	return append([]event.WeekDay{}, snap.Config.SelectedDays...)
}

// EventConfig returns the installed configuration.
func (s *Store) EventConfig() (event.EventConfig, bool) {
	snap, ok := s.Snapshot()
	if !ok {
		return event.EventConfig{}, false
	}
	cfg := snap.Config
	cfg.SelectedDays = append([]event.WeekDay{}, cfg.SelectedDays...)
	return cfg, true
}

// Venues returns a copy of the venue collection.
func (s *Store) Venues() []event.Venue {
	snap, ok := s.Snapshot()
	if !ok {
		return []event.Venue{}
	}
	return append([]event.Venue{}, snap.Venues...)
}

// SlotTemplates returns a copy of the template collection.
func (s *Store) SlotTemplates() []event.SlotTemplate {
	snap, ok := s.Snapshot()
	if !ok {
		return []event.SlotTemplate{}
	}
	return append([]event.SlotTemplate{}, snap.SlotTemplates...)
}

// ComputedSlots expands every template over the event days. A non-nil day
// keeps only that day's slots.
func (s *Store) ComputedSlots(day *event.WeekDay) []event.ComputedSlot {
	snap, ok := s.Snapshot()
	if !ok {
		return []event.ComputedSlot{}
	}
	slots := expansion.Expand(snap.SlotTemplates, snap.Config.SelectedDays, snap.DaySlotActivities)
	if day != nil {
		return expansion.BySlotDay(slots, *day)
	}
	return slots
}

// VenuesWithSlots groups computed slots under every venue.
func (s *Store) VenuesWithSlots(day *event.WeekDay) []event.VenueWithSlots {
	snap, ok := s.Snapshot()
	if !ok {
		return []event.VenueWithSlots{}
	}
	return s.venuesWithSlots(snap, day)
}

func (s *Store) venuesWithSlots(snap *Snapshot, day *event.WeekDay) []event.VenueWithSlots {
	key := viewCacheKey(snap.rev, day)
	if cached, ok := s.views.Get(key); ok {
		return cached
	}
	slots := expansion.Expand(snap.SlotTemplates, snap.Config.SelectedDays, snap.DaySlotActivities)
	venues := expansion.VenuesWithSlots(snap.Venues, slots, day)
	s.views.Store(key, venues)
	return venues
}

func (s *Store) filtered(filter aggregate.Filter) ([]event.VenueWithSlots, []event.WeekDay, bool) {
	snap, ok := s.Snapshot()
	if !ok {
		return nil, nil, false
	}
	venues := filter.Apply(s.venuesWithSlots(snap, nil))
	days := snap.Config.SelectedDays
	if filter.Day != nil {
		days = event.IntersectDays(days, []event.WeekDay{*filter.Day})
	}
	return venues, days, true
}

// Overview returns the dashboard cards.
func (s *Store) Overview(filter aggregate.Filter) aggregate.Overview {
	venues, days, ok := s.filtered(filter)
	if !ok {
		return aggregate.Overview{}
	}
	return aggregate.Summarize(venues, days)
}

// Charts renders the chart catalog.
func (s *Store) Charts(filter aggregate.Filter) []aggregate.Chart {
	venues, days, ok := s.filtered(filter)
	if !ok {
		return aggregate.BuildCharts(nil, nil)
	}
	return aggregate.BuildCharts(venues, days)
}

// Chart renders one chart. It reports false for unknown ids.
func (s *Store) Chart(id aggregate.ChartID, filter aggregate.Filter) (aggregate.Chart, bool) {
	venues, days, _ := s.filtered(filter)
	return aggregate.BuildChart(id, venues, days)
}

// ActivityTypeGroups groups venues by the activity type of each event day.
func (s *Store) ActivityTypeGroups(filter aggregate.Filter) []aggregate.ActivityTypeGroup {
	snap, ok := s.Snapshot()
	if !ok {
		return aggregate.VenuesByActivityType(nil, nil, nil, filter)
	}
	return aggregate.VenuesByActivityType(snap.Venues, snap.Config.SelectedDays, snap.VenueDayActivities, filter)
}

// FilterOptions lists the dashboard filter values.
func (s *Store) FilterOptions() aggregate.FilterOptions {
	snap, ok := s.Snapshot()
	if !ok {
		return aggregate.Options(nil)
	}
	return aggregate.Options(s.venuesWithSlots(snap, nil))
}

// Capacity runs the capacity window analysis over the raw templates.
func (s *Store) Capacity(window capacity.Window) capacity.Result {
	snap, ok := s.Snapshot()
	if !ok {
		return capacity.Analyze(nil, nil, window)
	}
	return capacity.Analyze(snap.SlotTemplates, snap.Venues, window)
}

// Overlaps lists same-venue template overlaps on shared event days.
func (s *Store) Overlaps() []expansion.Overlap {
	snap, ok := s.Snapshot()
	if !ok {
		return []expansion.Overlap{}
	}
	return expansion.DetectOverlaps(snap.SlotTemplates, snap.Config.SelectedDays)
}
