// Package capacity answers how much venue capacity is nominally available
// inside a clock window. It works on raw slot templates and ignores days.
package capacity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/example/hacktown-ops/internal/event"
)

// Slider bounds, in minutes since midnight.
const (
	MinMinute = 6 * 60
	MaxMinute = 23*60 + 59
	MinSpan   = 30
	Step      = 15
)

// ErrInvalidWindow is returned by NewWindow for out of range or too narrow
// windows.
var ErrInvalidWindow = errors.New("capacity: invalid window")

// Window is a clock range in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// DefaultWindow is 10:00 to 18:00.
var DefaultWindow = Window{Start: 10 * 60, End: 18 * 60}

// NewWindow validates the slider bounds and the minimum span.
func NewWindow(start, end int) (Window, error) {
	if start < MinMinute || end > MaxMinute {
		return Window{}, fmt.Errorf("%w: %s-%s outside %s-%s", ErrInvalidWindow,
			FormatMinutes(start), FormatMinutes(end), FormatMinutes(MinMinute), FormatMinutes(MaxMinute))
	}
	if start >= end-MinSpan {
		return Window{}, fmt.Errorf("%w: at least %d minutes required", ErrInvalidWindow, MinSpan)
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports full containment of [start, end] in the window.
func (w Window) Contains(start, end int) bool {
	return start >= w.Start && end <= w.End
}

// String renders the window as "HH:MM-HH:MM".
func (w Window) String() string {
	return event.TimeKey(FormatMinutes(w.Start), FormatMinutes(w.End))
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(minutes int) string {
	return event.FormatClock(minutes)
}

// TimeKeyCapacity is the capacity grouped under one "HH:MM-HH:MM" key.
type TimeKeyCapacity struct {
	Key         string   `json:"key"`
	Capacity    int      `json:"capacity"`
	Venues      int      `json:"venues"`
	TemplateIDs []string `json:"templateIds"`
}

// Result is the outcome of Analyze.
type Result struct {
	Window              Window            `json:"-"`
	TotalPeriodCapacity int               `json:"totalPeriodCapacity"`
	PerTimeKey          []TimeKeyCapacity `json:"perTimeKey"`
	SlotCount           int               `json:"slotCount"`
	Average             int               `json:"average"`
	Max                 int               `json:"max"`
	Min                 int               `json:"min"`
}

// Analyze selects the templates fully contained in the window and sums
// their venues' capacity.
//
// A venue referenced by several selected templates counts once per template.
// Templates whose venue is unknown count towards SlotCount, add nothing to the
// total and are left out of the per key grouping. Templates with unparseable
// times are skipped.
func Analyze(templates []event.SlotTemplate, venues []event.Venue, window Window) Result {
	capacities := make(map[string]int, len(venues))
	for _, venue := range venues {
		if _, exists := capacities[venue.ID]; !exists {
			capacities[venue.ID] = venue.Capacity
		}
	}

	result := Result{Window: window, PerTimeKey: []TimeKeyCapacity{}}
	groups := make(map[string]*TimeKeyCapacity)
	venueSets := make(map[string]map[string]struct{})

	for _, template := range templates {
		start, err := event.ParseClock(template.StartTime)
		if err != nil {
			continue
		}
		end, err := event.ParseClock(template.EndTime)
		if err != nil {
			continue
		}
		if !window.Contains(start, end) {
			continue
		}

		result.SlotCount++
		capacity, known := capacities[template.VenueID]
		if !known {
			continue
		}
		result.TotalPeriodCapacity += capacity

		key := event.TimeKey(template.StartTime, template.EndTime)
		group, ok := groups[key]
		if !ok {
			group = &TimeKeyCapacity{Key: key}
			groups[key] = group
			venueSets[key] = make(map[string]struct{})
		}
		group.Capacity += capacity
		group.TemplateIDs = append(group.TemplateIDs, template.ID)
		venueSets[key][template.VenueID] = struct{}{}
	}

	if len(groups) == 0 {
		return result
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result.Min = math.MaxInt
	for _, key := range keys {
		group := groups[key]
		group.Venues = len(venueSets[key])
		result.PerTimeKey = append(result.PerTimeKey, *group)
		if group.Capacity > result.Max {
			result.Max = group.Capacity
		}
		if group.Capacity < result.Min {
			result.Min = group.Capacity
		}
	}
	result.Average = int(math.Round(float64(result.TotalPeriodCapacity) / float64(len(keys))))
	return result
}
