package aggregate

import "github.com/example/hacktown-ops/internal/event"

// VenueDays is a venue with the days it hosts one activity type.
type VenueDays struct {
	Venue event.Venue     `json:"venue"`
	Days  []event.WeekDay `json:"days"`
}

// ActivityTypeGroup lists the venues hosting an activity type.
type ActivityTypeGroup struct {
	Type   event.ActivityType `json:"type"`
	Label  string             `json:"label"`
	Venues []VenueDays        `json:"venues"`
}

type venueDay struct {
	venueID string
	day     event.WeekDay
}

// VenuesByActivityType groups venues by the activity type they host on each
// selected day. Days without a recorded type count as the default type. Every
// activity type is returned, in display order; venues appear at most once per
// group.
func VenuesByActivityType(venues []event.Venue, selectedDays []event.WeekDay, dayActivities []event.VenueDayActivity, filter Filter) []ActivityTypeGroup {
	types := make(map[venueDay]event.ActivityType, len(dayActivities))
	for _, vda := range dayActivities {
		key := venueDay{venueID: vda.VenueID, day: vda.Day}
		if _, exists := types[key]; !exists {
			types[key] = vda.ActivityType
		}
	}

	order := event.ActivityTypes()
	groups := make([]ActivityTypeGroup, len(order))
	position := make(map[event.ActivityType]int, len(order))
	for i, activityType := range order {
		groups[i] = ActivityTypeGroup{Type: activityType, Label: activityType.Label(), Venues: []VenueDays{}}
		position[activityType] = i
	}

	days := event.SortDays(selectedDays)
	for _, venue := range venues {
		if !filter.MatchesVenue(venue) {
			continue
		}
		entry := make(map[event.ActivityType]int)
		for _, day := range days {
			if !filter.MatchesDay(day) {
				continue
			}
			activityType := types[venueDay{venueID: venue.ID, day: day}]
			if !activityType.Valid() {
				activityType = event.DefaultActivityType
			}
			g := position[activityType]
			if idx, ok := entry[activityType]; ok {
				groups[g].Venues[idx].Days = append(groups[g].Venues[idx].Days, day)
				continue
			}
			entry[activityType] = len(groups[g].Venues)
			groups[g].Venues = append(groups[g].Venues, VenueDays{Venue: venue, Days: []event.WeekDay{day}})
		}
	}
	return groups
}
