package aggregate

import "github.com/example/hacktown-ops/internal/event"

// ChartID identifies a dashboard chart.
type ChartID string

const (
	ChartCapacityPerSlot   ChartID = "capacityPerSlot"
	ChartCapacityByDay     ChartID = "capacityByDay"
	ChartSlotsByDay        ChartID = "slotsByDay"
	ChartSlotsByTime       ChartID = "slotsByTime"
	ChartSlotsByStatus     ChartID = "slotsByStatus"
	ChartSlotsByNucleo     ChartID = "slotsByNucleo"
	ChartVenuesByPorte     ChartID = "venuesByPorte"
	ChartVenuesByDay       ChartID = "venuesByDay"
	ChartVenuesByTime      ChartID = "venuesByTime"
	ChartVenuesByNucleo    ChartID = "venuesByNucleo"
	ChartVenuesByStructure ChartID = "venuesByStructure"
)

// ChartKind tells the presentation layer how to draw a series.
type ChartKind string

const (
	KindBar ChartKind = "bar"
	KindPie ChartKind = "pie"
)

// Chart is a rendered dashboard series.
type Chart struct {
	ID      ChartID   `json:"id"`
	Title   string    `json:"title"`
	Kind    ChartKind `json:"kind"`
	Series  string    `json:"series,omitempty"`
	Buckets []Bucket  `json:"data"`
}

type chartDef struct {
	id     ChartID
	title  string
	kind   ChartKind
	series string
	build  func(venues []event.VenueWithSlots, selectedDays []event.WeekDay) []Bucket
}

func ignoreDays(fn func([]event.VenueWithSlots) []Bucket) func([]event.VenueWithSlots, []event.WeekDay) []Bucket {
	return func(venues []event.VenueWithSlots, _ []event.WeekDay) []Bucket { return fn(venues) }
}

var catalog = []chartDef{
	{ChartCapacityPerSlot, "Capacidade por Slot", KindBar, "capacidade", ignoreDays(CapacityPerTimeSlot)},
	{ChartCapacityByDay, "Capacidade por Dia", KindBar, "capacidade", CapacityByDay},
	{ChartSlotsByDay, "Slots por Dia", KindBar, "slots", SlotsByDay},
	{ChartSlotsByTime, "Slots por Horário", KindBar, "slots", ignoreDays(SlotsByHour)},
	{ChartSlotsByStatus, "Slots por Status", KindPie, "", ignoreDays(SlotsByStatus)},
	{ChartSlotsByNucleo, "Slots por Núcleo", KindPie, "", ignoreDays(SlotsByNucleo)},
	{ChartVenuesByPorte, "Venues por Porte", KindPie, "", ignoreDays(VenuesBySize)},
	{ChartVenuesByDay, "Venues por Dia", KindBar, "venues", VenuesByDay},
	{ChartVenuesByTime, "Venues por Horário", KindBar, "venues", ignoreDays(VenuesByHour)},
	{ChartVenuesByNucleo, "Venues por Núcleo", KindPie, "", ignoreDays(VenuesByNucleo)},
	{ChartVenuesByStructure, "Venues por Tipo de Estrutura", KindPie, "", ignoreDays(VenuesByStructure)},
}

// ChartIDs lists the catalog in display order.
func ChartIDs() []ChartID {
	ids := make([]ChartID, len(catalog))
	for i, def := range catalog {
		ids[i] = def.id
	}
	return ids
}

// BuildChart renders one chart. It reports false for unknown ids.
func BuildChart(id ChartID, venues []event.VenueWithSlots, selectedDays []event.WeekDay) (Chart, bool) {
	for _, def := range catalog {
		if def.id == id {
			return render(def, venues, selectedDays), true
		}
	}
	return Chart{}, false
}

// BuildCharts renders the whole catalog.
func BuildCharts(venues []event.VenueWithSlots, selectedDays []event.WeekDay) []Chart {
	out := make([]Chart, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, render(def, venues, selectedDays))
	}
	return out
}

func render(def chartDef, venues []event.VenueWithSlots, selectedDays []event.WeekDay) Chart {
	return Chart{
		ID:      def.id,
		Title:   def.title,
		Kind:    def.kind,
		Series:  def.series,
		Buckets: def.build(venues, selectedDays),
	}
}
