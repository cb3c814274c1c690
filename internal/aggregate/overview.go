package aggregate

import (
	"math"

	"github.com/example/hacktown-ops/internal/event"
)

// Overview holds the dashboard headline cards.
type Overview struct {
	TotalVenues      int `json:"totalVenues"`
	TotalSlots       int `json:"totalSlots"`
	TotalCapacity    int `json:"totalCapacity"`
	AverageCapacity  int `json:"averageCapacity"`
	UniqueDays       int `json:"uniqueDays"`
	UniqueNucleos    int `json:"uniqueNucleos"`
	UniqueStructures int `json:"uniqueStructures"`
}

// Summarize computes the overview cards.
//
// AverageCapacity divides the total capacity by the number of venues but is
// only reported when at least one slot exists; otherwise it is zero.
func Summarize(venues []event.VenueWithSlots, selectedDays []event.WeekDay) Overview {
	overview := Overview{
		TotalVenues: len(venues),
		UniqueDays:  len(event.SortDays(selectedDays)),
	}
	nucleos := make(map[string]struct{})
	structures := make(map[event.StructureType]struct{})
	for _, venue := range venues {
		overview.TotalCapacity += venue.Capacity
		overview.TotalSlots += len(venue.Slots)
		if nucleo := venue.NucleoValue(); nucleo != "" {
			nucleos[nucleo] = struct{}{}
		}
		if venue.StructureType != "" {
			structures[venue.StructureType] = struct{}{}
		}
	}
	if overview.TotalSlots > 0 {
		overview.AverageCapacity = int(math.Round(float64(overview.TotalCapacity) / float64(overview.TotalVenues)))
	}
	overview.UniqueNucleos = len(nucleos)
	overview.UniqueStructures = len(structures)
	return overview
}
