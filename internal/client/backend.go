package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/persistence"
)

func escape(segment string) string {
	return url.PathEscape(segment)
}

// GetEventConfig fetches the event configuration. A missing configuration
// yields empty selected days.
func (c *Client) GetEventConfig(ctx context.Context) (event.EventConfig, error) {
	var dto *eventConfigDTO
	if err := c.do(ctx, http.MethodGet, "/event-config", nil, &dto); err != nil {
		return event.EventConfig{}, err
	}
	if dto == nil {
		return event.EventConfig{SelectedDays: []event.WeekDay{}}, nil
	}
	return dto.toEvent(), nil
}

func (c *Client) PutEventConfig(ctx context.Context, selectedDays []event.WeekDay, startDate, endDate *string) (event.EventConfig, error) {
	in := eventConfigDTO{SelectedDays: dayStrings(selectedDays), StartDate: startDate, EndDate: endDate}
	var out eventConfigDTO
	if err := c.do(ctx, http.MethodPut, "/event-config", in, &out); err != nil {
		return event.EventConfig{}, err
	}
	if out.SelectedDays == nil {
		out.SelectedDays = in.SelectedDays
		out.StartDate, out.EndDate = startDate, endDate
	}
	return out.toEvent(), nil
}

func (c *Client) ListVenues(ctx context.Context) ([]event.Venue, error) {
	var dtos []venueDTO
	if err := c.do(ctx, http.MethodGet, "/venues", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.Venue, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (c *Client) CreateVenue(ctx context.Context, venue event.Venue) (event.Venue, error) {
	in := venueFromEvent(venue)
	in.ID = ""
	var out venueDTO
	if err := c.do(ctx, http.MethodPost, "/venues", in, &out); err != nil {
		return event.Venue{}, err
	}
	return out.toEvent(), nil
}

func (c *Client) UpdateVenue(ctx context.Context, venue event.Venue) (event.Venue, error) {
	in := venueFromEvent(venue)
	in.ID = ""
	var out venueDTO
	if err := c.do(ctx, http.MethodPut, "/venues/"+escape(venue.ID), in, &out); err != nil {
		return event.Venue{}, err
	}
	if out.ID == "" {
		return venue, nil
	}
	return out.toEvent(), nil
}

func (c *Client) DeleteVenue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/venues/"+escape(id), nil, nil)
}

func (c *Client) BulkUpsertVenues(ctx context.Context, venues []event.Venue) ([]event.Venue, error) {
	in := make([]venueDTO, 0, len(venues))
	for _, v := range venues {
		dto := venueFromEvent(v)
		dto.ID = ""
		in = append(in, dto)
	}
	var dtos []venueDTO
	if err := c.do(ctx, http.MethodPost, "/venues/bulk", in, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.Venue, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

// NextVenueCode asks for the next code of a structure type; the empty type
// travels as "none".
func (c *Client) NextVenueCode(ctx context.Context, structureType event.StructureType) (string, error) {
	segment := string(structureType)
	if segment == "" {
		segment = "none"
	}
	var out struct {
		Code string `json:"code"`
	}
	if err := c.do(ctx, http.MethodGet, "/venues/next-code/"+escape(segment), nil, &out); err != nil {
		return "", err
	}
	return out.Code, nil
}

func (c *Client) ApplyDefaultSlots(ctx context.Context, venueID string) (application.DefaultSlotsResult, error) {
	var out struct {
		Message      string `json:"message"`
		SlotsCreated int    `json:"slotsCreated"`
	}
	if err := c.do(ctx, http.MethodPost, "/venues/"+escape(venueID)+"/apply-default-slots", struct{}{}, &out); err != nil {
		return application.DefaultSlotsResult{}, err
	}
	return application.DefaultSlotsResult{Message: out.Message, SlotsCreated: out.SlotsCreated}, nil
}

func (c *Client) ListSlotTemplates(ctx context.Context) ([]event.SlotTemplate, error) {
	var dtos []slotTemplateDTO
	if err := c.do(ctx, http.MethodGet, "/slot-templates", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.SlotTemplate, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (c *Client) CreateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error) {
	in := slotTemplateFromEvent(template)
	in.ID = ""
	var out slotTemplateDTO
	if err := c.do(ctx, http.MethodPost, "/slot-templates", in, &out); err != nil {
		return event.SlotTemplate{}, err
	}
	return out.toEvent(), nil
}

func (c *Client) UpdateSlotTemplate(ctx context.Context, template event.SlotTemplate) (event.SlotTemplate, error) {
	in := slotTemplateFromEvent(template)
	in.ID = ""
	var out slotTemplateDTO
	if err := c.do(ctx, http.MethodPut, "/slot-templates/"+escape(template.ID), in, &out); err != nil {
		return event.SlotTemplate{}, err
	}
	if out.ID == "" {
		return template, nil
	}
	return out.toEvent(), nil
}

func (c *Client) DeleteSlotTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/slot-templates/"+escape(id), nil, nil)
}

func (c *Client) ListDaySlotActivities(ctx context.Context) ([]event.DaySlotActivity, error) {
	var dtos []daySlotActivityDTO
	if err := c.do(ctx, http.MethodGet, "/day-slot-activities", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.DaySlotActivity, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (c *Client) CreateDaySlotActivity(ctx context.Context, dsa event.DaySlotActivity) (event.DaySlotActivity, error) {
	in := map[string]string{
		"slotTemplateId": dsa.SlotTemplateID,
		"day":            string(dsa.Day),
		"activityId":     dsa.ActivityID,
	}
	var out daySlotActivityDTO
	if err := c.do(ctx, http.MethodPost, "/day-slot-activities", in, &out); err != nil {
		return event.DaySlotActivity{}, err
	}
	return out.toEvent(), nil
}

func (c *Client) UpdateDaySlotActivity(ctx context.Context, id, activityID string) (event.DaySlotActivity, error) {
	var out daySlotActivityDTO
	in := map[string]string{"activityId": activityID}
	if err := c.do(ctx, http.MethodPut, "/day-slot-activities/"+escape(id), in, &out); err != nil {
		return event.DaySlotActivity{}, err
	}
	return out.toEvent(), nil
}

func (c *Client) DeleteDaySlotActivity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/day-slot-activities/"+escape(id), nil, nil)
}

func (c *Client) ListVenueDayActivities(ctx context.Context) ([]event.VenueDayActivity, error) {
	var dtos []venueDayActivityDTO
	if err := c.do(ctx, http.MethodGet, "/venue-day-activities", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.VenueDayActivity, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (c *Client) PutVenueDayActivity(ctx context.Context, venueID string, day event.WeekDay, activityType event.ActivityType) (event.VenueDayActivity, error) {
	path := "/venue-day-activities/venue/" + escape(venueID) + "/day/" + escape(string(day))
	var out venueDayActivityDTO
	if err := c.do(ctx, http.MethodPut, path, map[string]string{"activityType": string(activityType)}, &out); err != nil {
		return event.VenueDayActivity{}, err
	}
	if out.VenueID == "" {
		out.VenueID, out.Day, out.ActivityType = venueID, string(day), string(activityType)
	}
	return out.toEvent(), nil
}

func (c *Client) CreateActivity(ctx context.Context, activity event.Activity) (event.Activity, error) {
	in := activityFromEvent(activity)
	in.ID = ""
	var out activityDTO
	if err := c.do(ctx, http.MethodPost, "/activities", in, &out); err != nil {
		return event.Activity{}, err
	}
	return out.toEvent(), nil
}

func (c *Client) UpdateActivity(ctx context.Context, activity event.Activity) (event.Activity, error) {
	in := activityFromEvent(activity)
	in.ID = ""
	var out activityDTO
	if err := c.do(ctx, http.MethodPut, "/activities/"+escape(activity.ID), in, &out); err != nil {
		return event.Activity{}, err
	}
	if out.ID == "" {
		return activity, nil
	}
	return out.toEvent(), nil
}

// checklistPaths names the two checklist collections.
type checklistPaths struct {
	base string
}

var (
	infrastructurePaths = checklistPaths{base: "/venue-infrastructure"}
	audiovisualPaths    = checklistPaths{base: "/venue-audiovisual"}
)

func (p checklistPaths) item(venueID string) string { return p.base + "/" + escape(venueID) }
func (p checklistPaths) batch() string              { return p.base + "/batch" }

func (c *Client) ListInfrastructure(ctx context.Context) ([]event.Infrastructure, error) {
	var dtos []infrastructureDTO
	if err := c.do(ctx, http.MethodGet, infrastructurePaths.base, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.Infrastructure, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

// GetInfrastructure maps a null body to persistence.ErrNotFound.
func (c *Client) GetInfrastructure(ctx context.Context, venueID string) (event.Infrastructure, error) {
	var dto *infrastructureDTO
	if err := c.do(ctx, http.MethodGet, infrastructurePaths.item(venueID), nil, &dto); err != nil {
		return event.Infrastructure{}, err
	}
	if dto == nil {
		return event.Infrastructure{}, persistence.ErrNotFound
	}
	return dto.toEvent(), nil
}

// UpsertInfrastructure updates the venue's checklist, creating it when the
// server reports none.
func (c *Client) UpsertInfrastructure(ctx context.Context, item event.Infrastructure) (event.Infrastructure, error) {
	in := infrastructureFromEvent(item)
	var out infrastructureDTO
	err := c.do(ctx, http.MethodPut, infrastructurePaths.item(item.VenueID), in, &out)
	if isNotFound(err) {
		err = c.do(ctx, http.MethodPost, infrastructurePaths.base, in, &out)
	}
	if err != nil {
		return event.Infrastructure{}, err
	}
	if out.VenueID == "" {
		return item, nil
	}
	return out.toEvent(), nil
}

func (c *Client) BatchUpsertInfrastructure(ctx context.Context, items []event.Infrastructure) ([]event.Infrastructure, error) {
	updates := make([]infrastructureDTO, 0, len(items))
	for _, item := range items {
		updates = append(updates, infrastructureFromEvent(item))
	}
	var dtos []infrastructureDTO
	in := struct {
		Updates []infrastructureDTO `json:"updates"`
	}{Updates: updates}
	if err := c.do(ctx, http.MethodPost, infrastructurePaths.batch(), in, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.Infrastructure, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (c *Client) DeleteInfrastructure(ctx context.Context, venueID string) error {
	return c.do(ctx, http.MethodDelete, infrastructurePaths.item(venueID), nil, nil)
}

func (c *Client) ListAudiovisual(ctx context.Context) ([]event.Audiovisual, error) {
	var dtos []audiovisualDTO
	if err := c.do(ctx, http.MethodGet, audiovisualPaths.base, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.Audiovisual, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (c *Client) GetAudiovisual(ctx context.Context, venueID string) (event.Audiovisual, error) {
	var dto *audiovisualDTO
	if err := c.do(ctx, http.MethodGet, audiovisualPaths.item(venueID), nil, &dto); err != nil {
		return event.Audiovisual{}, err
	}
	if dto == nil {
		return event.Audiovisual{}, persistence.ErrNotFound
	}
	return dto.toEvent(), nil
}

func (c *Client) UpsertAudiovisual(ctx context.Context, item event.Audiovisual) (event.Audiovisual, error) {
	in := audiovisualFromEvent(item)
	var out audiovisualDTO
	err := c.do(ctx, http.MethodPut, audiovisualPaths.item(item.VenueID), in, &out)
	if isNotFound(err) {
		err = c.do(ctx, http.MethodPost, audiovisualPaths.base, in, &out)
	}
	if err != nil {
		return event.Audiovisual{}, err
	}
	if out.VenueID == "" {
		return item, nil
	}
	return out.toEvent(), nil
}

func (c *Client) BatchUpsertAudiovisual(ctx context.Context, items []event.Audiovisual) ([]event.Audiovisual, error) {
	updates := make([]audiovisualDTO, 0, len(items))
	for _, item := range items {
		updates = append(updates, audiovisualFromEvent(item))
	}
	var dtos []audiovisualDTO
	in := struct {
		Updates []audiovisualDTO `json:"updates"`
	}{Updates: updates}
	if err := c.do(ctx, http.MethodPost, audiovisualPaths.batch(), in, &dtos); err != nil {
		return nil, err
	}
	out := make([]event.Audiovisual, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (c *Client) DeleteAudiovisual(ctx context.Context, venueID string) error {
	return c.do(ctx, http.MethodDelete, audiovisualPaths.item(venueID), nil, nil)
}

// Ping checks that the remote API answers the event configuration read.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetEventConfig(ctx)
	return err
}
