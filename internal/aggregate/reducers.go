// Package aggregate reduces expanded venues into the cards and chart series
// of the dashboard. Reducers never mutate their input and return empty or zero
// results for empty input.
package aggregate

import (
	"sort"
	"strings"

	"github.com/example/hacktown-ops/internal/event"
)

// Bucket is one labelled value of a chart series.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"name"`
	Value int    `json:"value"`
}

// Status and size bucket labels.
const (
	StatusAvailable = "Disponível"
	StatusScheduled = "Programado"

	SizeLarge  = "Grande (>400)"
	SizeMedium = "Médio (101-400)"
	SizeSmall  = "Pequeno (≤100)"

	NoNucleo    = "SEM NÚCLEO"
	NoStructure = "Não definido"
)

// SizeClass returns the size bucket label for a capacity.
func SizeClass(capacity int) string {
	switch {
	case capacity > 400:
		return SizeLarge
	case capacity > 100:
		return SizeMedium
	default:
		return SizeSmall
	}
}

// orderedCounter accumulates values per key while remembering first
// appearance.
type orderedCounter struct {
	keys   []string
	values map[string]int
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{values: make(map[string]int)}
}

func (c *orderedCounter) add(key string, delta int) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] += delta
}

func (c *orderedCounter) buckets(label func(string) string) []Bucket {
	out := make([]Bucket, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, Bucket{Key: key, Label: label(key), Value: c.values[key]})
	}
	return out
}

func identity(s string) string { return s }

// CapacityPerTimeSlot sums the owning venue capacity per "HH:MM-HH:MM" key,
// once per occurrence, ordered by start minute.
func CapacityPerTimeSlot(venues []event.VenueWithSlots) []Bucket {
	counter := newOrderedCounter()
	starts := make(map[string]int)
	for _, venue := range venues {
		for _, slot := range venue.Slots {
			key := event.TimeKey(slot.StartTime, slot.EndTime)
			counter.add(key, venue.Capacity)
			if _, ok := starts[key]; !ok {
				minute, err := event.ParseClock(slot.StartTime)
				if err != nil {
					minute = event.MinutesPerDay
				}
				starts[key] = minute
			}
		}
	}
	out := counter.buckets(identity)
	sort.SliceStable(out, func(i, j int) bool { return starts[out[i].Key] < starts[out[j].Key] })
	return out
}

// dayBuckets builds zeroed buckets for the selected days in canonical order.
func dayBuckets(selectedDays []event.WeekDay) ([]Bucket, map[event.WeekDay]int) {
	days := event.SortDays(selectedDays)
	out := make([]Bucket, len(days))
	index := make(map[event.WeekDay]int, len(days))
	for i, day := range days {
		out[i] = Bucket{Key: string(day), Label: day.ShortLabel()}
		index[day] = i
	}
	return out, index
}

// CapacityByDay sums venue capacity of the slots on each selected day.
func CapacityByDay(venues []event.VenueWithSlots, selectedDays []event.WeekDay) []Bucket {
	out, index := dayBuckets(selectedDays)
	for _, venue := range venues {
		for _, slot := range venue.Slots {
			if i, ok := index[slot.Day]; ok {
				out[i].Value += venue.Capacity
			}
		}
	}
	return out
}

// SlotsByDay counts slots on each selected day.
func SlotsByDay(venues []event.VenueWithSlots, selectedDays []event.WeekDay) []Bucket {
	out, index := dayBuckets(selectedDays)
	for _, venue := range venues {
		for _, slot := range venue.Slots {
			if i, ok := index[slot.Day]; ok {
				out[i].Value++
			}
		}
	}
	return out
}

// VenuesByDay counts distinct venues holding at least one slot on each
// selected day.
func VenuesByDay(venues []event.VenueWithSlots, selectedDays []event.WeekDay) []Bucket {
	out, index := dayBuckets(selectedDays)
	for _, venue := range venues {
		seen := make(map[event.WeekDay]bool)
		for _, slot := range venue.Slots {
			i, ok := index[slot.Day]
			if !ok || seen[slot.Day] {
				continue
			}
			seen[slot.Day] = true
			out[i].Value++
		}
	}
	return out
}

// SlotsByStatus partitions slots into available and scheduled.
func SlotsByStatus(venues []event.VenueWithSlots) []Bucket {
	available, scheduled := 0, 0
	for _, venue := range venues {
		for _, slot := range venue.Slots {
			if slot.Activity != nil {
				scheduled++
			} else {
				available++
			}
		}
	}
	return []Bucket{
		{Key: "available", Label: StatusAvailable, Value: available},
		{Key: "scheduled", Label: StatusScheduled, Value: scheduled},
	}
}

func hourLabel(hour string) string { return hour + "h" }

func sortByKey(buckets []Bucket) []Bucket {
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// SlotsByHour counts slots per start hour.
func SlotsByHour(venues []event.VenueWithSlots) []Bucket {
	counter := newOrderedCounter()
	for _, venue := range venues {
		for _, slot := range venue.Slots {
			counter.add(event.ClockHour(slot.StartTime), 1)
		}
	}
	return sortByKey(counter.buckets(hourLabel))
}

// VenuesByHour counts distinct venues per start hour.
func VenuesByHour(venues []event.VenueWithSlots) []Bucket {
	counter := newOrderedCounter()
	for _, venue := range venues {
		seen := make(map[string]bool)
		for _, slot := range venue.Slots {
			hour := event.ClockHour(slot.StartTime)
			if seen[hour] {
				continue
			}
			seen[hour] = true
			counter.add(hour, 1)
		}
	}
	return sortByKey(counter.buckets(hourLabel))
}

// NucleoKey upper-cases the núcleo, using NoNucleo for missing values.
func NucleoKey(venue event.Venue) string {
	if nucleo := venue.NucleoValue(); nucleo != "" {
		return strings.ToUpper(nucleo)
	}
	return NoNucleo
}

// SlotsByNucleo sums slot counts per núcleo in first-appearance order.
func SlotsByNucleo(venues []event.VenueWithSlots) []Bucket {
	counter := newOrderedCounter()
	for _, venue := range venues {
		counter.add(NucleoKey(venue.Venue), len(venue.Slots))
	}
	return counter.buckets(identity)
}

// VenuesByNucleo counts venues per núcleo in first-appearance order.
func VenuesByNucleo(venues []event.VenueWithSlots) []Bucket {
	counter := newOrderedCounter()
	for _, venue := range venues {
		counter.add(NucleoKey(venue.Venue), 1)
	}
	return counter.buckets(identity)
}

// VenuesBySize counts venues in the large, medium and small classes, always
// returning the three buckets in that order.
func VenuesBySize(venues []event.VenueWithSlots) []Bucket {
	out := []Bucket{
		{Key: "grande", Label: SizeLarge},
		{Key: "medio", Label: SizeMedium},
		{Key: "pequeno", Label: SizeSmall},
	}
	for _, venue := range venues {
		switch SizeClass(venue.Capacity) {
		case SizeLarge:
			out[0].Value++
		case SizeMedium:
			out[1].Value++
		default:
			out[2].Value++
		}
	}
	return out
}

// VenuesByStructure counts venues per structure label.
func VenuesByStructure(venues []event.VenueWithSlots) []Bucket {
	counter := newOrderedCounter()
	for _, venue := range venues {
		label := NoStructure
		if venue.StructureType != "" {
			label = venue.StructureType.Label()
		}
		counter.add(label, 1)
	}
	return counter.buckets(identity)
}
