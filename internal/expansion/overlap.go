package expansion

import (
	"sort"

	"github.com/example/hacktown-ops/internal/event"
)

// Overlap describes two templates of the same venue whose clock ranges
// intersect on at least one shared effective day.
type Overlap struct {
	VenueID      string
	TemplateID   string
	WithTemplate string
	Days         []event.WeekDay
}

type clockRange struct {
	template event.SlotTemplate
	start    int
	end      int
	days     []event.WeekDay
}

// DetectOverlaps reports every overlapping template pair once, ordered by
// venue then template id. Templates with unparseable times are ignored.
func DetectOverlaps(templates []event.SlotTemplate, selectedDays []event.WeekDay) []Overlap {
	byVenue := make(map[string][]clockRange)
	for _, template := range templates {
		start, err := event.ParseClock(template.StartTime)
		if err != nil {
			continue
		}
		end, err := event.ParseClock(template.EndTime)
		if err != nil {
			continue
		}
		days := EffectiveDays(template, selectedDays)
		if len(days) == 0 {
			continue
		}
		byVenue[template.VenueID] = append(byVenue[template.VenueID], clockRange{template: template, start: start, end: end, days: days})
	}

	var overlaps []Overlap
	for venueID, ranges := range byVenue {
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].template.ID < ranges[j].template.ID })
		for i := 0; i < len(ranges); i++ {
			for j := i + 1; j < len(ranges); j++ {
				a, b := ranges[i], ranges[j]
				if !(a.start < b.end && b.start < a.end) {
					continue
				}
				shared := event.IntersectDays(a.days, b.days)
				if len(shared) == 0 {
					continue
				}
				overlaps = append(overlaps, Overlap{
					VenueID:      venueID,
					TemplateID:   a.template.ID,
					WithTemplate: b.template.ID,
					Days:         shared,
				})
			}
		}
	}

	sort.Slice(overlaps, func(i, j int) bool {
		if overlaps[i].VenueID != overlaps[j].VenueID {
			return overlaps[i].VenueID < overlaps[j].VenueID
		}
		if overlaps[i].TemplateID != overlaps[j].TemplateID {
			return overlaps[i].TemplateID < overlaps[j].TemplateID
		}
		return overlaps[i].WithTemplate < overlaps[j].WithTemplate
	})
	return overlaps
}

// OverlapsFor narrows overlaps to those involving templateID.
func OverlapsFor(overlaps []Overlap, templateID string) []Overlap {
	var out []Overlap
	for _, o := range overlaps {
		if o.TemplateID == templateID || o.WithTemplate == templateID {
			out = append(out, o)
		}
	}
	return out
}
