package event

import "time"

// StructureType classifies the physical kind of a venue.
type StructureType string

const (
	StructureRestaurante StructureType = "restaurante"
	StructureSala        StructureType = "sala"
	StructureAuditorio   StructureType = "auditorio"
	StructureEspaco      StructureType = "espaco"
	StructureCasa        StructureType = "casa"
	StructureApoio       StructureType = "apoio"
	StructurePalco       StructureType = "palco"
	StructureFeira       StructureType = "feira"
	StructureLounge      StructureType = "lounge"
	StructureEstande     StructureType = "estande"
	StructureCoworking   StructureType = "coworking"
)

var structureLabels = map[StructureType]string{
	StructureRestaurante: "Restaurante",
	StructureSala:        "Sala",
	StructureAuditorio:   "Auditório",
	StructureEspaco:      "Espaço",
	StructureCasa:        "Casa",
	StructureApoio:       "Apoio",
	StructurePalco:       "Palco",
	StructureFeira:       "Feira",
	StructureLounge:      "Lounge",
	StructureEstande:     "Estande",
	StructureCoworking:   "Coworking",
}

// Valid reports whether the structure type is known. The empty value is not
// valid; venues without a type carry the empty string.
func (s StructureType) Valid() bool {
	_, ok := structureLabels[s]
	return ok
}

// Label returns the display label or the raw value for unknown types.
func (s StructureType) Label() string {
	if label, ok := structureLabels[s]; ok {
		return label
	}
	return string(s)
}

// ActivityType categorizes what a venue hosts on a given day.
type ActivityType string

const (
	ActivityMusica   ActivityType = "musica"
	ActivityPalestra ActivityType = "palestra"
	ActivityPainel   ActivityType = "painel"
	ActivityWorkshop ActivityType = "workshop"
)

// DefaultActivityType applies when a venue has no explicit type for a day.
const DefaultActivityType = ActivityPalestra

var activityTypeOrder = []ActivityType{ActivityMusica, ActivityPalestra, ActivityPainel, ActivityWorkshop}

var activityTypeLabels = map[ActivityType]string{
	ActivityMusica:   "Música",
	ActivityPalestra: "Palestra",
	ActivityPainel:   "Painel",
	ActivityWorkshop: "Workshop",
}

// ActivityTypes returns the activity types in display order.
func ActivityTypes() []ActivityType {
	out := make([]ActivityType, len(activityTypeOrder))
	copy(out, activityTypeOrder)
	return out
}

func (a ActivityType) Valid() bool {
	_, ok := activityTypeLabels[a]
	return ok
}

func (a ActivityType) Label() string {
	if label, ok := activityTypeLabels[a]; ok {
		return label
	}
	return string(a)
}

// EventConfig holds the event wide day selection and optional date range.
type EventConfig struct {
	ID           string
	SelectedDays []WeekDay
	StartDate    *string
	EndDate      *string
	UpdatedAt    time.Time
}

// Venue is a physical location that hosts slots.
type Venue struct {
	ID            string
	Code          string
	Name          string
	Location      string
	Capacity      int
	Description   *string
	Nucleo        *string
	StructureType StructureType
}

// NucleoValue returns the núcleo or the empty string.
func (v Venue) NucleoValue() string {
	if v.Nucleo == nil {
		return ""
	}
	return *v.Nucleo
}

// SlotTemplate is a venue scoped recurring time range.
type SlotTemplate struct {
	ID        string
	VenueID   string
	StartTime string
	EndTime   string
	Scope     DayScope
}

// Activity is a talk, workshop or show assigned to slot instances.
type Activity struct {
	ID          string
	Title       string
	Speaker     string
	Description *string
}

// DaySlotActivity binds one (slot template, day) pair to an activity.
type DaySlotActivity struct {
	ID             string
	SlotTemplateID string
	Day            WeekDay
	ActivityID     string
	Activity       *Activity
}

// SlotDayKey identifies a slot instance.
type SlotDayKey struct {
	SlotTemplateID string
	Day            WeekDay
}

// Key returns the composite key of the assignment.
func (d DaySlotActivity) Key() SlotDayKey {
	return SlotDayKey{SlotTemplateID: d.SlotTemplateID, Day: d.Day}
}

// VenueDayActivity records which kind of programming a venue hosts on a day.
type VenueDayActivity struct {
	ID           string
	VenueID      string
	Day          WeekDay
	ActivityType ActivityType
}

// ComputedSlot is one expanded occurrence of a slot template on a day.
type ComputedSlot struct {
	SlotTemplateID string
	VenueID        string
	Day            WeekDay
	StartTime      string
	EndTime        string
	Activity       *Activity
}

// Key returns the (template, day) identity of the slot.
func (c ComputedSlot) Key() SlotDayKey {
	return SlotDayKey{SlotTemplateID: c.SlotTemplateID, Day: c.Day}
}

// VenueWithSlots pairs a venue with its computed slots.
type VenueWithSlots struct {
	Venue
	Slots []ComputedSlot
}
