package http

import (
	"strings"
	"time"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/batch"
	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/expansion"
)

type venueDTO struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Capacity      int     `json:"capacity"`
	Description   *string `json:"description,omitempty"`
	Nucleo        *string `json:"nucleo,omitempty"`
	StructureType string  `json:"structureType,omitempty"`
}

func toVenueDTO(v event.Venue) venueDTO {
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

func toVenueDTOs(venues []event.Venue) []venueDTO {
	out := make([]venueDTO, 0, len(venues))
	for _, v := range venues {
		out = append(out, toVenueDTO(v))
	}
	return out
}

type venueRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Capacity      int     `json:"capacity"`
	Description   *string `json:"description"`
	Nucleo        *string `json:"nucleo"`
	StructureType string  `json:"structureType"`
}

func (r venueRequest) toInput() application.VenueInput {
	return application.VenueInput{
		Code:          r.Code,
		Name:          r.Name,
		Location:      r.Location,
		Capacity:      r.Capacity,
		Description:   r.Description,
		Nucleo:        r.Nucleo,
		StructureType: event.StructureType(strings.TrimSpace(r.StructureType)),
	}
}

// slotTemplateDTO omits days for templates following the event days.
type slotTemplateDTO struct {
	ID        string   `json:"id"`
	VenueID   string   `json:"venueId"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Days      []string `json:"days,omitempty"`
}

func toSlotTemplateDTO(t event.SlotTemplate) slotTemplateDTO {
	return slotTemplateDTO{
		ID:        t.ID,
		VenueID:   t.VenueID,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		Days:      t.Scope.WireDays(),
	}
}

type slotTemplateRequest struct {
	VenueID   string   `json:"venueId"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Days      []string `json:"days"`
}

// toInput applies the wire convention: no days means every event day.
func (r slotTemplateRequest) toInput() application.SlotTemplateInput {
	return application.SlotTemplateInput{
		VenueID:   r.VenueID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		AllDays:   len(r.Days) == 0,
		Days:      rawDays(r.Days),
	}
}

type overlapDTO struct {
	VenueID      string   `json:"venueId"`
	TemplateID   string   `json:"templateId"`
	WithTemplate string   `json:"withTemplateId"`
	Days         []string `json:"days"`
}

func toOverlapDTOs(overlaps []expansion.Overlap) []overlapDTO {
	out := make([]overlapDTO, 0, len(overlaps))
	for _, o := range overlaps {
		out = append(out, overlapDTO{
			VenueID:      o.VenueID,
			TemplateID:   o.TemplateID,
			WithTemplate: o.WithTemplate,
			Days:         dayStrings(o.Days),
		})
	}
	return out
}

type slotTemplateResponse struct {
	Template slotTemplateDTO `json:"template"`
	Warnings []overlapDTO    `json:"warnings"`
}

type batchDaysRequest struct {
	TemplateIDs []string `json:"templateIds"`
	Days        []string `json:"days"`
	Mode        string   `json:"mode"`
}

func (r batchDaysRequest) toInput() application.BatchDaysInput {
	return application.BatchDaysInput{
		TemplateIDs: r.TemplateIDs,
		TargetDays:  rawDays(r.Days),
		Mode:        batch.Mode(strings.ToLower(strings.TrimSpace(r.Mode))),
	}
}

type batchSkipDTO struct {
	TemplateID string `json:"templateId"`
	Reason     string `json:"reason"`
}

type batchFailureDTO struct {
	TemplateID string `json:"templateId"`
	Message    string `json:"message"`
}

type batchResultDTO struct {
	Updated []slotTemplateDTO `json:"updated"`
	Skipped []batchSkipDTO    `json:"skipped"`
	Failed  []batchFailureDTO `json:"failed"`
}

func toBatchResultDTO(result application.BatchResult) batchResultDTO {
	out := batchResultDTO{
		Updated: make([]slotTemplateDTO, 0, len(result.Updated)),
		Skipped: make([]batchSkipDTO, 0, len(result.Skipped)),
		Failed:  make([]batchFailureDTO, 0, len(result.Failed)),
	}
	for _, t := range result.Updated {
		out.Updated = append(out.Updated, toSlotTemplateDTO(t))
	}
	for _, s := range result.Skipped {
		out.Skipped = append(out.Skipped, batchSkipDTO{TemplateID: s.TemplateID, Reason: s.Reason})
	}
	for _, f := range result.Failed {
		out.Failed = append(out.Failed, batchFailureDTO{TemplateID: f.TemplateID, Message: failureMessage(f.Err)})
	}
	return out
}

func failureMessage(err error) string {
	if application.ErrorKind(err) == "backend" {
		return application.MessageBackendFailure
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

type activityDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Speaker     string  `json:"speaker"`
	Description *string `json:"description,omitempty"`
}

func toActivityDTO(a *event.Activity) *activityDTO {
	if a == nil {
		return nil
	}
	return &activityDTO{ID: a.ID, Title: a.Title, Speaker: a.Speaker, Description: a.Description}
}

type activityRequest struct {
	Title       string  `json:"title"`
	Speaker     string  `json:"speaker"`
	Description *string `json:"description"`
}

func (r activityRequest) toInput() application.ActivityInput {
	return application.ActivityInput{Title: r.Title, Speaker: r.Speaker, Description: r.Description}
}

type daySlotActivityDTO struct {
	ID             string       `json:"id"`
	SlotTemplateID string       `json:"slotTemplateId"`
	Day            string       `json:"day"`
	ActivityID     string       `json:"activityId"`
	Activity       *activityDTO `json:"activity,omitempty"`
}

func toDaySlotActivityDTO(d event.DaySlotActivity) daySlotActivityDTO {
	return daySlotActivityDTO{
		ID:             d.ID,
		SlotTemplateID: d.SlotTemplateID,
		Day:            string(d.Day),
		ActivityID:     d.ActivityID,
		Activity:       toActivityDTO(d.Activity),
	}
}

type venueDayActivityDTO struct {
	ID           string `json:"id"`
	VenueID      string `json:"venueId"`
	Day          string `json:"day"`
	ActivityType string `json:"activityType"`
}

func toVenueDayActivityDTO(v event.VenueDayActivity) venueDayActivityDTO {
	return venueDayActivityDTO{ID: v.ID, VenueID: v.VenueID, Day: string(v.Day), ActivityType: string(v.ActivityType)}
}

type computedSlotDTO struct {
	SlotTemplateID string       `json:"slotTemplateId"`
	VenueID        string       `json:"venueId"`
	Day            string       `json:"day"`
	StartTime      string       `json:"startTime"`
	EndTime        string       `json:"endTime"`
	Activity       *activityDTO `json:"activity,omitempty"`
}

func toComputedSlotDTOs(slots []event.ComputedSlot) []computedSlotDTO {
	out := make([]computedSlotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, computedSlotDTO{
			SlotTemplateID: s.SlotTemplateID,
			VenueID:        s.VenueID,
			Day:            string(s.Day),
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			Activity:       toActivityDTO(s.Activity),
		})
	}
	return out
}

type venueWithSlotsDTO struct {
	venueDTO
	Slots []computedSlotDTO `json:"slots"`
}

func toVenueWithSlotsDTOs(venues []event.VenueWithSlots) []venueWithSlotsDTO {
	out := make([]venueWithSlotsDTO, 0, len(venues))
	for _, v := range venues {
		out = append(out, venueWithSlotsDTO{venueDTO: toVenueDTO(v.Venue), Slots: toComputedSlotDTOs(v.Slots)})
	}
	return out
}

type eventConfigDTO struct {
	ID           string   `json:"id"`
	SelectedDays []string `json:"selectedDays"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

func toEventConfigDTO(cfg event.EventConfig) eventConfigDTO {
	out := eventConfigDTO{
		ID:           cfg.ID,
		SelectedDays: dayStrings(cfg.SelectedDays),
		StartDate:    cfg.StartDate,
		EndDate:      cfg.EndDate,
	}
	if !cfg.UpdatedAt.IsZero() {
		out.UpdatedAt = cfg.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return out
}

type selectedDaysRequest struct {
	SelectedDays []string `json:"selectedDays"`
}

type eventDatesRequest struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
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

type requirementSummaryDTO struct {
	Name    string `json:"name"`
	Needed  int    `json:"needed"`
	Pending int    `json:"pending"`
}

func toRequirementSummaryDTOs(items []event.RequirementSummary) []requirementSummaryDTO {
	out := make([]requirementSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, requirementSummaryDTO{Name: item.Name, Needed: item.Needed, Pending: item.Pending})
	}
	return out
}

func rawDays(values []string) []event.WeekDay {
	out := make([]event.WeekDay, 0, len(values))
	for _, v := range values {
		out = append(out, event.WeekDay(strings.ToLower(strings.TrimSpace(v))))
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
