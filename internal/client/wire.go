package client

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/example/hacktown-ops/internal/event"
)

// flexibleID accepts string and numeric identifiers; day slot activities
// carry numeric ids on the wire.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

type eventConfigDTO struct {
	ID           string     `json:"id,omitempty"`
	SelectedDays []string   `json:"selectedDays"`
	StartDate    *string    `json:"startDate,omitempty"`
	EndDate      *string    `json:"endDate,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func (d eventConfigDTO) toEvent() event.EventConfig {
	cfg := event.EventConfig{
		ID:           d.ID,
		SelectedDays: event.SortDays(weekDays(d.SelectedDays)),
		StartDate:    emptyToNil(d.StartDate),
		EndDate:      emptyToNil(d.EndDate),
	}
	if d.UpdatedAt != nil {
		cfg.UpdatedAt = *d.UpdatedAt
	}
	return cfg
}

type venueDTO struct {
	ID            string  `json:"id,omitempty"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Capacity      int     `json:"capacity"`
	Description   *string `json:"description,omitempty"`
	Nucleo        *string `json:"nucleo,omitempty"`
	StructureType string  `json:"structureType,omitempty"`
}

func venueFromEvent(v event.Venue) venueDTO {
	return venueDTO{
		ID:            v.ID,
		Code:          v.Code,
		Name:          v.Name,
		Location:      v.Location,
		Capacity:      v.Capacity,
		Description:   v.Description,
		Nucleo:        v.Nucleo,
		StructureType: string(v.StructureType),
	}
}

func (d venueDTO) toEvent() event.Venue {
	return event.Venue{
		ID:            d.ID,
		Code:          d.Code,
		Name:          d.Name,
		Location:      d.Location,
		Capacity:      d.Capacity,
		Description:   d.Description,
		Nucleo:        d.Nucleo,
		StructureType: event.StructureType(d.StructureType),
	}
}

// slotTemplateDTO omits days for AllSelected templates.
type slotTemplateDTO struct {
	ID        string   `json:"id,omitempty"`
	VenueID   string   `json:"venueId"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Days      []string `json:"days,omitempty"`
}

func slotTemplateFromEvent(t event.SlotTemplate) slotTemplateDTO {
	return slotTemplateDTO{
		ID:        t.ID,
		VenueID:   t.VenueID,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		Days:      t.Scope.WireDays(),
	}
}

func (d slotTemplateDTO) toEvent() event.SlotTemplate {
	return event.SlotTemplate{
		ID:        d.ID,
		VenueID:   d.VenueID,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Scope:     event.ScopeFromDays(weekDays(d.Days)),
	}
}

type activityDTO struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Speaker     string  `json:"speaker"`
	Description *string `json:"description,omitempty"`
}

func activityFromEvent(a event.Activity) activityDTO {
	return activityDTO{ID: a.ID, Title: a.Title, Speaker: a.Speaker, Description: a.Description}
}

func (d activityDTO) toEvent() event.Activity {
	return event.Activity{ID: d.ID, Title: d.Title, Speaker: d.Speaker, Description: d.Description}
}

type daySlotActivityDTO struct {
	ID             flexibleID   `json:"id,omitempty"`
	SlotTemplateID string       `json:"slotTemplateId"`
	Day            string       `json:"day"`
	ActivityID     string       `json:"activityId,omitempty"`
	Activity       *activityDTO `json:"activity,omitempty"`
}

func (d daySlotActivityDTO) toEvent() event.DaySlotActivity {
	out := event.DaySlotActivity{
		ID:             string(d.ID),
		SlotTemplateID: d.SlotTemplateID,
		Day:            event.WeekDay(d.Day),
		ActivityID:     d.ActivityID,
	}
	if d.Activity != nil {
		activity := d.Activity.toEvent()
		out.Activity = &activity
		if out.ActivityID == "" {
			out.ActivityID = activity.ID
		}
	}
	return out
}

type venueDayActivityDTO struct {
	ID           flexibleID `json:"id,omitempty"`
	VenueID      string     `json:"venueId"`
	Day          string     `json:"day"`
	ActivityType string     `json:"activityType"`
}

func (d venueDayActivityDTO) toEvent() event.VenueDayActivity {
	return event.VenueDayActivity{
		ID:           string(d.ID),
		VenueID:      d.VenueID,
		Day:          event.WeekDay(d.Day),
		ActivityType: event.ActivityType(d.ActivityType),
	}
}

type infrastructureDTO struct {
	VenueID              string `json:"venueId"`
	Alvara               bool   `json:"alvara"`
	AlvaraProvidenciado  bool   `json:"alvaraProvidenciado"`
	Avcb                 bool   `json:"avcb"`
	AvcbProvidenciado    bool   `json:"avcbProvidenciado"`
	Revisao              bool   `json:"revisao"`
	RevisaoProvidenciada bool   `json:"revisaoProvidenciada"`
	Reforma              bool   `json:"reforma"`
	ReformaProvidenciada bool   `json:"reformaProvidenciada"`
	Status               string `json:"status"`
}

func infrastructureFromEvent(i event.Infrastructure) infrastructureDTO {
	return infrastructureDTO(i)
}

func (d infrastructureDTO) toEvent() event.Infrastructure {
	return event.Infrastructure(d)
}

type audiovisualDTO struct {
	VenueID                    string `json:"venueId"`
	Microfone                  bool   `json:"microfone"`
	MicrofoneProvidenciado     bool   `json:"microfoneProvidenciado"`
	Projetor                   bool   `json:"projetor"`
	ProjetorProvidenciado      bool   `json:"projetorProvidenciado"`
	CaboHdmi                   bool   `json:"caboHdmi"`
	CaboHdmiProvidenciado      bool   `json:"caboHdmiProvidenciado"`
	PassadorSlide              bool   `json:"passadorSlide"`
	PassadorSlideProvidenciado bool   `json:"passadorSlideProvidenciado"`
	CaixaSom                   bool   `json:"caixaSom"`
	CaixaSomProvidenciada      bool   `json:"caixaSomProvidenciada"`
	Tela                       bool   `json:"tela"`
	TelaProvidenciada          bool   `json:"telaProvidenciada"`
	Status                     string `json:"status"`
}

func audiovisualFromEvent(a event.Audiovisual) audiovisualDTO {
	return audiovisualDTO(a)
}

func (d audiovisualDTO) toEvent() event.Audiovisual {
	return event.Audiovisual(d)
}

func weekDays(raw []string) []event.WeekDay {
	out := make([]event.WeekDay, 0, len(raw))
	for _, d := range raw {
		out = append(out, event.WeekDay(d))
	}
	return out
}

func dayStrings(days []event.WeekDay) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, string(d))
	}
	return out
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
