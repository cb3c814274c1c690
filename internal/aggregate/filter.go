package aggregate

import (
	"sort"

	"github.com/example/hacktown-ops/internal/event"
)

// Filter narrows the dashboard. Zero fields match everything.
type Filter struct {
	Day       *event.WeekDay
	Nucleo    string
	Structure event.StructureType
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return f.Day != nil || f.Nucleo != "" || f.Structure != ""
}

// MatchesVenue applies the venue level criteria. Núcleo matching is exact.
func (f Filter) MatchesVenue(venue event.Venue) bool {
	if f.Nucleo != "" && venue.NucleoValue() != f.Nucleo {
		return false
	}
	if f.Structure != "" && venue.StructureType != f.Structure {
		return false
	}
	return true
}

// MatchesDay applies the day criterion.
func (f Filter) MatchesDay(day event.WeekDay) bool {
	return f.Day == nil || *f.Day == day
}

// Apply drops venues failing the venue criteria and slots failing the day
// criterion. Venues left without slots are kept.
func (f Filter) Apply(venues []event.VenueWithSlots) []event.VenueWithSlots {
	out := make([]event.VenueWithSlots, 0, len(venues))
	for _, venue := range venues {
		if !f.MatchesVenue(venue.Venue) {
			continue
		}
		slots := make([]event.ComputedSlot, 0, len(venue.Slots))
		for _, slot := range venue.Slots {
			if f.MatchesDay(slot.Day) {
				slots = append(slots, slot)
			}
		}
		out = append(out, event.VenueWithSlots{Venue: venue.Venue, Slots: slots})
	}
	return out
}

// FilterOptions lists the distinct values a dashboard filter can take.
type FilterOptions struct {
	Nucleos    []string              `json:"nucleos"`
	Structures []event.StructureType `json:"structures"`
}

// Options collects the sorted distinct núcleos and structure types.
func Options(venues []event.VenueWithSlots) FilterOptions {
	nucleos := make(map[string]struct{})
	structures := make(map[event.StructureType]struct{})
	for _, venue := range venues {
		if nucleo := venue.NucleoValue(); nucleo != "" {
			nucleos[nucleo] = struct{}{}
		}
		if venue.StructureType != "" {
			structures[venue.StructureType] = struct{}{}
		}
	}

	opts := FilterOptions{
		Nucleos:    make([]string, 0, len(nucleos)),
		Structures: make([]event.StructureType, 0, len(structures)),
	}
	for nucleo := range nucleos {
		opts.Nucleos = append(opts.Nucleos, nucleo)
	}
	for structure := range structures {
		opts.Structures = append(opts.Structures, structure)
	}
	sort.Strings(opts.Nucleos)
	sort.Slice(opts.Structures, func(i, j int) bool { return opts.Structures[i] < opts.Structures[j] })
	return opts
}
