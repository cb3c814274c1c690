// Package testfixtures builds deterministic event data, clocks and SQL
// harnesses for tests across packages.
package testfixtures

import (
	"fmt"

	"github.com/example/hacktown-ops/internal/event"
)

// Dataset is an in-memory event whose rows reference each other by the ids
// the dataset assigned. Builder methods append and return the new row.
type Dataset struct {
	Config             event.EventConfig
	Venues             []event.Venue
	SlotTemplates      []event.SlotTemplate
	Activities         []event.Activity
	DaySlotActivities  []event.DaySlotActivity
	VenueDayActivities []event.VenueDayActivity

	venueIDs    *IDGenerator
	templateIDs *IDGenerator
	activityIDs *IDGenerator
	bindingIDs  *IDGenerator
}

// NewDataset starts an event on the given days.
func NewDataset(days ...event.WeekDay) *Dataset {
	return &Dataset{
		Config:      event.EventConfig{ID: "config-001", SelectedDays: event.SortDays(days)},
		venueIDs:    NewIDGenerator("venue"),
		templateIDs: NewIDGenerator("slot"),
		activityIDs: NewIDGenerator("activity"),
		bindingIDs:  NewIDGenerator("dsa"),
	}
}

// VenueOption customizes a venue built by Dataset.Venue.
type VenueOption func(*event.Venue)

func WithCapacity(capacity int) VenueOption {
	return func(v *event.Venue) { v.Capacity = capacity }
}

func WithNucleo(nucleo string) VenueOption {
	return func(v *event.Venue) { v.Nucleo = &nucleo }
}

func WithStructure(structure event.StructureType) VenueOption {
	return func(v *event.Venue) { v.StructureType = structure }
}

func WithLocation(location string) VenueOption {
	return func(v *event.Venue) { v.Location = location }
}

func WithDescription(description string) VenueOption {
	return func(v *event.Venue) { v.Description = &description }
}

// Venue defaults to a 100 seat sala in the Centro.
func (d *Dataset) Venue(code, name string, opts ...VenueOption) event.Venue {
	venue := event.Venue{
		ID:            d.venueIDs.Next(),
		Code:          code,
		Name:          name,
		Location:      "Centro",
		Capacity:      100,
		StructureType: event.StructureSala,
	}
	for _, opt := range opts {
		opt(&venue)
	}
	d.Venues = append(d.Venues, venue)
	return venue
}

// Slot adds a template; a zero scope follows the event days.
func (d *Dataset) Slot(venueID, start, end string, scope event.DayScope) event.SlotTemplate {
	template := event.SlotTemplate{
		ID:        d.templateIDs.Next(),
		VenueID:   venueID,
		StartTime: start,
		EndTime:   end,
		Scope:     scope,
	}
	d.SlotTemplates = append(d.SlotTemplates, template)
	return template
}

// Assign creates an activity and binds it to the (template, day) slot.
func (d *Dataset) Assign(templateID string, day event.WeekDay, title, speaker string) event.DaySlotActivity {
	activity := event.Activity{ID: d.activityIDs.Next(), Title: title, Speaker: speaker}
	d.Activities = append(d.Activities, activity)

	binding := event.DaySlotActivity{
		ID:             d.bindingIDs.Next(),
		SlotTemplateID: templateID,
		Day:            day,
		ActivityID:     activity.ID,
		Activity:       &activity,
	}
	d.DaySlotActivities = append(d.DaySlotActivities, binding)
	return binding
}

// VenueDay records the programming type of a venue on a day.
func (d *Dataset) VenueDay(venueID string, day event.WeekDay, activityType event.ActivityType) event.VenueDayActivity {
	vda := event.VenueDayActivity{
		ID:           fmt.Sprintf("vda-%s-%s", venueID, day),
		VenueID:      venueID,
		Day:          day,
		ActivityType: activityType,
	}
	d.VenueDayActivities = append(d.VenueDayActivities, vda)
	return vda
}

// Hacktown returns a small festival: three days, four venues across two
// núcleos, a mix of all-day and explicit templates, and a few bookings.
//
//	PAL-001 Palco Principal   500  palco  Música   10:00-12:00 all, 14:00-16:00 sexta+sabado
//	SAL-001 Sala Inovação      80  sala   Palestra 10:00-11:00 all, 11:00-12:00 quinta
//	AUD-001 Auditório Central 250  aud.   Painel   09:00-10:30 all
//	COW-001 Cowork Hub         40  cowork (no slots)
func Hacktown() *Dataset {
	d := NewDataset(event.Quinta, event.Sexta, event.Sabado)

	palco := d.Venue("PAL-001", "Palco Principal", WithCapacity(500), WithNucleo("Música"), WithStructure(event.StructurePalco), WithLocation("Praça Central"))
	sala := d.Venue("SAL-001", "Sala Inovação", WithCapacity(80), WithNucleo("Tecnologia"))
	auditorio := d.Venue("AUD-001", "Auditório Central", WithCapacity(250), WithNucleo("Tecnologia"), WithStructure(event.StructureAuditorio))
	d.Venue("COW-001", "Cowork Hub", WithCapacity(40), WithStructure(event.StructureCoworking))

	show := d.Slot(palco.ID, "10:00", "12:00", event.AllSelected())
	d.Slot(palco.ID, "14:00", "16:00", event.Explicit(event.Sexta, event.Sabado))
	talk := d.Slot(sala.ID, "10:00", "11:00", event.AllSelected())
	d.Slot(sala.ID, "11:00", "12:00", event.Explicit(event.Quinta))
	panel := d.Slot(auditorio.ID, "09:00", "10:30", event.AllSelected())

	d.Assign(show.ID, event.Sexta, "Abertura", "Banda da Casa")
	d.Assign(talk.ID, event.Quinta, "Cidades Inteligentes", "Ana Souza")
	d.Assign(talk.ID, event.Sabado, "IA no Interior", "Bruno Lima")
	d.Assign(panel.ID, event.Quinta, "Futuro do Trabalho", "Painel Convidado")

	d.VenueDay(palco.ID, event.Sexta, event.ActivityMusica)
	d.VenueDay(auditorio.ID, event.Quinta, event.ActivityPainel)
	return d
}

// VenueByCode returns the venue with code.
func (d *Dataset) VenueByCode(code string) (event.Venue, bool) {
	for _, venue := range d.Venues {
		if venue.Code == code {
			return venue, true
		}
	}
	return event.Venue{}, false
}
