package application

import (
	"context"
	"errors"
	"strings"

	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/expansion"
)

// SetSelectedDays replaces the event days. The configuration is persisted
// first; activity assignments on removed days are deleted afterwards. A failed
// delete leaves an assignment on an unselected day, which expands to nothing.
func (f *Facade) SetSelectedDays(ctx context.Context, days []event.WeekDay) (cfg event.EventConfig, err error) {
	m := f.begin(ctx, "SetSelectedDays", "days", len(days))
	defer func() { m.end(err, "selected days updated", "selected_days", cfg.SelectedDays) }()
	if err = m.ready(); err != nil {
		return
	}

	for _, day := range days {
		if !day.Valid() {
			err = fieldError("selectedDays", msgInvalidDay)
			return
		}
	}
	next := event.SortDays(days)
	if len(next) == 0 {
		err = fieldError("selectedDays", msgSelectDay)
		return
	}

	snap := m.snapshot()
	removed := event.SubtractDays(snap.Config.SelectedDays, next)
	var orphans []event.DaySlotActivity
	for _, dsa := range snap.DaySlotActivities {
		if event.ContainsDay(removed, dsa.Day) {
			orphans = append(orphans, dsa)
		}
	}

	cfg, err = f.backend.PutEventConfig(ctx, next, snap.Config.StartDate, snap.Config.EndDate)
	if err != nil {
		err = mapBackendError("PutEventConfig", err)
		return
	}
	cfg = normalizeConfig(cfg)

	for _, dsa := range orphans {
		if delErr := f.backend.DeleteDaySlotActivity(ctx, dsa.ID); delErr != nil {
			mapped := mapBackendError("DeleteDaySlotActivity", delErr)
			if errors.Is(mapped, ErrNotFound) {
				continue
			}
			err = mapped
			m.reload()
			return
		}
	}

	persisted := cfg
	f.store.update("SetSelectedDays", func(s *Snapshot) {
		s.Config = persisted
		kept := s.DaySlotActivities[:0]
		for _, dsa := range s.DaySlotActivities {
			if !event.ContainsDay(removed, dsa.Day) {
				kept = append(kept, dsa)
			}
		}
		s.DaySlotActivities = kept
	})
	m.reload()
	return
}

func parseOptionalDate(field string, value *string, vErr *ValidationError) *string {
	value = normalizeOptionalString(value)
	if value == nil {
		return nil
	}
	if _, err := event.ParseDate(*value); err != nil {
		vErr.add(field, msgInvalidDate)
	}
	return value
}

// SetEventDates stores the presentational date range with the current days.
func (f *Facade) SetEventDates(ctx context.Context, startDate, endDate *string) (cfg event.EventConfig, err error) {
	m := f.begin(ctx, "SetEventDates")
	defer func() { m.end(err, "event dates updated") }()
	if err = m.ready(); err != nil {
		return
	}

	vErr := &ValidationError{}
	start := parseOptionalDate("startDate", startDate, vErr)
	end := parseOptionalDate("endDate", endDate, vErr)
	if !vErr.HasErrors() && start != nil && end != nil && *end < *start {
		vErr.add("endDate", msgDatesOrder)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	snap := m.snapshot()
	cfg, err = f.backend.PutEventConfig(ctx, snap.Config.SelectedDays, start, end)
	if err != nil {
		err = mapBackendError("PutEventConfig", err)
		return
	}
	cfg = normalizeConfig(cfg)

	persisted := cfg
	f.store.update("SetEventDates", func(s *Snapshot) {
		s.Config = persisted
	})
	m.reload()
	return
}

func activityFromInput(input ActivityInput) event.Activity {
	return event.Activity{
		Title:       strings.TrimSpace(input.Title),
		Speaker:     strings.TrimSpace(input.Speaker),
		Description: normalizeOptionalString(input.Description),
	}
}

// slotExists reports whether (templateID, day) is a live slot instance.
func slotExists(snap *Snapshot, templateID string, day event.WeekDay) (bool, error) {
	template, _, ok := findTemplate(snap.SlotTemplates, templateID)
	if !ok {
		return false, ErrNotFound
	}
	return event.ContainsDay(expansion.EffectiveDays(template, snap.Config.SelectedDays), day), nil
}

func findDayActivity(dsas []event.DaySlotActivity, key event.SlotDayKey) (event.DaySlotActivity, bool) {
	dsa, ok := expansion.ActivityIndex(dsas)[key]
	return dsa, ok
}

// AddActivityToSlot creates an activity and assigns it to a slot instance,
// replacing any activity already assigned there. When the assignment write
// fails the created activity stays on the backend and its id is logged.
func (f *Facade) AddActivityToSlot(ctx context.Context, templateID string, day event.WeekDay, input ActivityInput) (dsa event.DaySlotActivity, err error) {
	m := f.begin(ctx, "AddActivityToSlot", "template_id", templateID, "day", string(day))
	defer func() { m.end(err, "activity assigned", "day_slot_activity_id", dsa.ID) }()
	if err = m.ready(); err != nil {
		return
	}

	snap := m.snapshot()
	if vErr := validateActivityInput(f.validate, input); vErr.HasErrors() {
		err = vErr
		return
	}
	var exists bool
	if exists, err = slotExists(snap, templateID, day); err != nil {
		return
	}
	if !exists {
		err = fieldError("day", msgSlotMissing)
		return
	}

	var activity event.Activity
	activity, err = f.backend.CreateActivity(ctx, activityFromInput(input))
	if err != nil {
		err = mapBackendError("CreateActivity", err)
		return
	}

	key := event.SlotDayKey{SlotTemplateID: templateID, Day: day}
	if existing, ok := findDayActivity(snap.DaySlotActivities, key); ok {
		dsa, err = f.backend.UpdateDaySlotActivity(ctx, existing.ID, activity.ID)
		if err != nil {
			err = mapBackendError("UpdateDaySlotActivity", err)
			m.logger.WarnContext(ctx, "activity left without a slot", "orphaned_activity_id", activity.ID)
			return
		}
	} else {
		dsa, err = f.backend.CreateDaySlotActivity(ctx, event.DaySlotActivity{
			SlotTemplateID: templateID,
			Day:            day,
			ActivityID:     activity.ID,
		})
		if err != nil {
			err = mapBackendError("CreateDaySlotActivity", err)
			m.logger.WarnContext(ctx, "activity left without a slot", "orphaned_activity_id", activity.ID)
			return
		}
	}
	if dsa.Activity == nil {
		assigned := activity
		dsa.Activity = &assigned
	}

	written := dsa
	f.store.update("AddActivityToSlot", func(s *Snapshot) {
		kept := s.DaySlotActivities[:0]
		for _, current := range s.DaySlotActivities {
			if current.Key() != key {
				kept = append(kept, current)
			}
		}
		s.DaySlotActivities = append(kept, written)
	})
	m.reload()
	return
}

// UpdateActivityInSlot edits the activity assigned to a slot instance. When
// nothing is assigned the call only reloads.
func (f *Facade) UpdateActivityInSlot(ctx context.Context, templateID string, day event.WeekDay, input ActivityInput) (activity event.Activity, err error) {
	m := f.begin(ctx, "UpdateActivityInSlot", "template_id", templateID, "day", string(day))
	defer func() { m.end(err, "slot activity updated", "activity_id", activity.ID) }()
	if err = m.ready(); err != nil {
		return
	}

	if vErr := validateActivityInput(f.validate, input); vErr.HasErrors() {
		err = vErr
		return
	}

	key := event.SlotDayKey{SlotTemplateID: templateID, Day: day}
	existing, ok := findDayActivity(m.snapshot().DaySlotActivities, key)
	if !ok {
		m.reload()
		return
	}

	next := activityFromInput(input)
	next.ID = existing.ActivityID
	activity, err = f.backend.UpdateActivity(ctx, next)
	if err != nil {
		err = mapBackendError("UpdateActivity", err)
		return
	}

	updated := activity
	f.store.update("UpdateActivityInSlot", func(s *Snapshot) {
		for i, dsa := range s.DaySlotActivities {
			if dsa.ActivityID == updated.ID {
				a := updated
				s.DaySlotActivities[i].Activity = &a
			}
		}
	})
	m.reload()
	return
}

// RemoveActivityFromSlot unassigns the activity of a slot instance. It is a
// no-op when nothing is assigned.
func (f *Facade) RemoveActivityFromSlot(ctx context.Context, templateID string, day event.WeekDay) (err error) {
	m := f.begin(ctx, "RemoveActivityFromSlot", "template_id", templateID, "day", string(day))
	defer func() { m.end(err, "slot activity removed") }()
	if err = m.ready(); err != nil {
		return
	}

	key := event.SlotDayKey{SlotTemplateID: templateID, Day: day}
	existing, ok := findDayActivity(m.snapshot().DaySlotActivities, key)
	if !ok {
		return
	}
	if err = f.backend.DeleteDaySlotActivity(ctx, existing.ID); err != nil {
		err = mapBackendError("DeleteDaySlotActivity", err)
		return
	}

	f.store.update("RemoveActivityFromSlot", func(s *Snapshot) {
		kept := s.DaySlotActivities[:0]
		for _, dsa := range s.DaySlotActivities {
			if dsa.Key() != key {
				kept = append(kept, dsa)
			}
		}
		s.DaySlotActivities = kept
	})
	m.reload()
	return
}

// UpdateVenueDayActivity sets the activity type a venue hosts on a day. The
// store is updated locally without a full reload unless the background
// collections have not arrived yet.
func (f *Facade) UpdateVenueDayActivity(ctx context.Context, venueID string, day event.WeekDay, activityType event.ActivityType) (vda event.VenueDayActivity, err error) {
	m := f.begin(ctx, "UpdateVenueDayActivity", "venue_id", venueID, "day", string(day))
	defer func() { m.end(err, "venue day activity updated", "activity_type", string(vda.ActivityType)) }()
	if err = m.ready(); err != nil {
		return
	}

	snap := m.snapshot()
	vErr := &ValidationError{}
	if !day.Valid() {
		vErr.add("day", msgInvalidDay)
	}
	if !activityType.Valid() {
		vErr.add("activityType", msgInvalidType)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if _, _, ok := findVenue(snap.Venues, venueID); !ok {
		err = ErrNotFound
		return
	}

	vda, err = f.backend.PutVenueDayActivity(ctx, venueID, day, activityType)
	if err != nil {
		err = mapBackendError("PutVenueDayActivity", err)
		return
	}

	if !snap.BackgroundLoaded {
		m.reload()
		return
	}
	written := vda
	f.store.update("UpdateVenueDayActivity", func(s *Snapshot) {
		for i, current := range s.VenueDayActivities {
			if current.VenueID == venueID && current.Day == day {
				s.VenueDayActivities[i] = written
				return
			}
		}
		s.VenueDayActivities = append(s.VenueDayActivities, written)
	})
	return
}
