// Package expansion turns sparse slot templates into concrete per-day slot
// instances and derives the per-day and per-venue views the dashboard reads.
//
// Every function is pure: inputs are never mutated and results are rebuilt on
// each call.
package expansion

import (
	"sort"

	"github.com/example/hacktown-ops/internal/event"
)

// EffectiveDays returns the days a template expands into for the selected
// event days, in canonical order.
func EffectiveDays(template event.SlotTemplate, selectedDays []event.WeekDay) []event.WeekDay {
	return template.Scope.Effective(selectedDays)
}

// ActivityIndex maps (template, day) pairs to their assignment. When the input
// holds more than one row for the same pair the first one wins.
func ActivityIndex(dayActivities []event.DaySlotActivity) map[event.SlotDayKey]event.DaySlotActivity {
	index := make(map[event.SlotDayKey]event.DaySlotActivity, len(dayActivities))
	for _, dsa := range dayActivities {
		key := dsa.Key()
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = dsa
	}
	return index
}

// Expand produces one ComputedSlot per template and effective day.
//
// The expansion guarantees:
//   - templates are visited in input order, days in canonical weekday order;
//   - no two results share a (template, day) pair;
//   - a slot carries an activity only when an assignment exists for that exact
//     pair.
//
// A template whose effective days are empty contributes nothing.
func Expand(templates []event.SlotTemplate, selectedDays []event.WeekDay, dayActivities []event.DaySlotActivity) []event.ComputedSlot {
	index := ActivityIndex(dayActivities)
	selected := event.SortDays(selectedDays)

	slots := make([]event.ComputedSlot, 0, len(templates)*len(selected))
	seen := make(map[event.SlotDayKey]struct{}, cap(slots))
	for _, template := range templates {
		for _, day := range EffectiveDays(template, selected) {
			key := event.SlotDayKey{SlotTemplateID: template.ID, Day: day}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			slot := event.ComputedSlot{
				SlotTemplateID: template.ID,
				VenueID:        template.VenueID,
				Day:            day,
				StartTime:      template.StartTime,
				EndTime:        template.EndTime,
			}
			if dsa, ok := index[key]; ok {
				// Rows loaded without the joined activity still mark the slot as taken.
				activity := event.Activity{ID: dsa.ActivityID}
				if dsa.Activity != nil {
					activity = *dsa.Activity
				}
				slot.Activity = &activity
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

// BySlotDay filters slots to those occurring on day.
func BySlotDay(slots []event.ComputedSlot, day event.WeekDay) []event.ComputedSlot {
	out := make([]event.ComputedSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Day == day {
			out = append(out, slot)
		}
	}
	return out
}

// VenuesWithSlots attaches slots to their venues. Every venue is returned in
// input order, possibly with no slots; slots referencing unknown venues are
// dropped. When filterDay is non-nil only slots on that day are kept. Each
// venue's slots are sorted by weekday order then start time.
func VenuesWithSlots(venues []event.Venue, slots []event.ComputedSlot, filterDay *event.WeekDay) []event.VenueWithSlots {
	byVenue := make(map[string][]event.ComputedSlot, len(venues))
	for _, slot := range slots {
		if filterDay != nil && slot.Day != *filterDay {
			continue
		}
		byVenue[slot.VenueID] = append(byVenue[slot.VenueID], slot)
	}

	out := make([]event.VenueWithSlots, 0, len(venues))
	for _, venue := range venues {
		venueSlots := byVenue[venue.ID]
		if venueSlots == nil {
			venueSlots = []event.ComputedSlot{}
		}
		SortSlots(venueSlots)
		out = append(out, event.VenueWithSlots{Venue: venue, Slots: venueSlots})
	}
	return out
}

// SortSlots orders slots in place by weekday index then "HH:MM" start time.
// String comparison is valid because times are zero padded.
func SortSlots(slots []event.ComputedSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		di, dj := slots[i].Day.Index(), slots[j].Day.Index()
		if di != dj {
			return di < dj
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

// OrphanedDayActivities returns the assignments that no longer correspond to a
// slot instance: their day is not selected, their template is gone, or the
// template's scope excludes the day.
func OrphanedDayActivities(templates []event.SlotTemplate, selectedDays []event.WeekDay, dayActivities []event.DaySlotActivity) []event.DaySlotActivity {
	live := make(map[event.SlotDayKey]struct{})
	for _, slot := range Expand(templates, selectedDays, nil) {
		live[slot.Key()] = struct{}{}
	}

	var orphans []event.DaySlotActivity
	for _, dsa := range dayActivities {
		if _, ok := live[dsa.Key()]; !ok {
			orphans = append(orphans, dsa)
		}
	}
	return orphans
}
