package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/hacktown-ops/internal/batch"
	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/expansion"
)

func findTemplate(templates []event.SlotTemplate, id string) (event.SlotTemplate, int, bool) {
	for i, template := range templates {
		if template.ID == id {
			return template, i, true
		}
	}
	return event.SlotTemplate{}, -1, false
}

func dependentActivities(dsas []event.DaySlotActivity, templateID string) []event.DaySlotActivity {
	var out []event.DaySlotActivity
	for _, dsa := range dsas {
		if dsa.SlotTemplateID == templateID {
			out = append(out, dsa)
		}
	}
	return out
}

func templateFromInput(input SlotTemplateInput) event.SlotTemplate {
	return event.SlotTemplate{
		VenueID:   strings.TrimSpace(input.VenueID),
		StartTime: strings.TrimSpace(input.StartTime),
		EndTime:   strings.TrimSpace(input.EndTime),
		Scope:     scopeFromInput(input),
	}
}

func trimSlotInput(input SlotTemplateInput) SlotTemplateInput {
	input.VenueID = strings.TrimSpace(input.VenueID)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	return input
}

func (f *Facade) overlapsFor(templateID string) []expansion.Overlap {
	return expansion.OverlapsFor(f.store.Overlaps(), templateID)
}

// CreateSlotTemplate validates and persists a new template. The event must
// have at least one selected day. Same-venue overlaps are returned as
// warnings and do not block the write.
func (f *Facade) CreateSlotTemplate(ctx context.Context, input SlotTemplateInput) (result SlotTemplateResult, err error) {
	m := f.begin(ctx, "CreateSlotTemplate", "venue_id", input.VenueID)
	defer func() {
		m.end(err, "slot template created", "template_id", result.Template.ID, "overlaps", len(result.Overlaps))
	}()
	if err = m.ready(); err != nil {
		return
	}

	input = trimSlotInput(input)
	snap := m.snapshot()
	vErr := validateSlotTemplateInput(f.validate, input, snap.Venues)
	if len(snap.Config.SelectedDays) == 0 {
		vErr.add("days", msgSelectDay)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var created event.SlotTemplate
	created, err = f.backend.CreateSlotTemplate(ctx, templateFromInput(input))
	if err != nil {
		err = mapBackendError("CreateSlotTemplate", err)
		return
	}

	f.store.update("CreateSlotTemplate", func(s *Snapshot) {
		s.SlotTemplates = append(s.SlotTemplates, created)
	})
	m.reload()

	result = SlotTemplateResult{Template: created, Overlaps: f.overlapsFor(created.ID)}
	return
}

// UpdateSlotTemplate validates and replaces a template's venue, times and
// day scope.
func (f *Facade) UpdateSlotTemplate(ctx context.Context, id string, input SlotTemplateInput) (result SlotTemplateResult, err error) {
	m := f.begin(ctx, "UpdateSlotTemplate", "template_id", id)
	defer func() { m.end(err, "slot template updated", "overlaps", len(result.Overlaps)) }()
	if err = m.ready(); err != nil {
		return
	}

	snap := m.snapshot()
	if _, _, ok := findTemplate(snap.SlotTemplates, id); !ok {
		err = ErrNotFound
		return
	}
	input = trimSlotInput(input)
	if vErr := validateSlotTemplateInput(f.validate, input, snap.Venues); vErr.HasErrors() {
		err = vErr
		return
	}

	next := templateFromInput(input)
	next.ID = id
	var updated event.SlotTemplate
	updated, err = f.backend.UpdateSlotTemplate(ctx, next)
	if err != nil {
		err = mapBackendError("UpdateSlotTemplate", err)
		return
	}

	f.store.update("UpdateSlotTemplate", func(s *Snapshot) {
		if _, i, ok := findTemplate(s.SlotTemplates, id); ok {
			s.SlotTemplates[i] = updated
		}
	})
	m.reload()

	result = SlotTemplateResult{Template: updated, Overlaps: f.overlapsFor(id)}
	return
}

// DeleteSlotTemplate removes a template. Templates with assigned activities
// are only removed with force, in which case the assignments go first.
func (f *Facade) DeleteSlotTemplate(ctx context.Context, id string, force bool) (err error) {
	m := f.begin(ctx, "DeleteSlotTemplate", "template_id", id, "force", force)
	defer func() { m.end(err, "slot template deleted") }()
	if err = m.ready(); err != nil {
		return
	}

	snap := m.snapshot()
	if _, _, ok := findTemplate(snap.SlotTemplates, id); !ok {
		err = ErrNotFound
		return
	}

	dependents := dependentActivities(snap.DaySlotActivities, id)
	if len(dependents) > 0 && !force {
		err = &IntegrityError{
			Entity:     "slot_template",
			ID:         id,
			Dependents: len(dependents),
			Message:    fmt.Sprintf("Este slot possui %d atividade(s) programada(s). Confirme para remover o slot e as atividades.", len(dependents)),
		}
		return
	}

	// Assignments already gone on the backend are ignored.
	for _, dsa := range dependents {
		delErr := f.backend.DeleteDaySlotActivity(ctx, dsa.ID)
		if delErr == nil {
			continue
		}
		if mapped := mapBackendError("DeleteDaySlotActivity", delErr); !errors.Is(mapped, ErrNotFound) {
			err = mapped
			m.reload()
			return
		}
	}

	if err = f.backend.DeleteSlotTemplate(ctx, id); err != nil {
		err = mapBackendError("DeleteSlotTemplate", err)
		if len(dependents) > 0 {
			m.reload()
		}
		return
	}

	f.store.update("DeleteSlotTemplate", func(s *Snapshot) {
		if _, i, ok := findTemplate(s.SlotTemplates, id); ok {
			s.SlotTemplates = append(s.SlotTemplates[:i], s.SlotTemplates[i+1:]...)
		}
		kept := s.DaySlotActivities[:0]
		for _, dsa := range s.DaySlotActivities {
			if dsa.SlotTemplateID != id {
				kept = append(kept, dsa)
			}
		}
		s.DaySlotActivities = kept
	})
	m.reload()
	return
}

// ApplyDays reassigns the days of many templates at once. Each planned update
// is written independently; failures are collected per template and one
// reload follows when at least one write succeeded.
func (f *Facade) ApplyDays(ctx context.Context, input BatchDaysInput) (result BatchResult, err error) {
	m := f.begin(ctx, "ApplyDays", "templates", len(input.TemplateIDs), "mode", string(input.Mode))
	defer func() {
		m.end(err, "batch days applied",
			"updated", len(result.Updated),
			"skipped", len(result.Skipped),
			"failed", len(result.Failed),
		)
	}()
	if err = m.ready(); err != nil {
		return
	}

	snap := m.snapshot()
	plan, planErr := batch.Build(snap.SlotTemplates, batch.Request{
		TemplateIDs: input.TemplateIDs,
		TargetDays:  input.TargetDays,
		Mode:        input.Mode,
	}, snap.Config.SelectedDays)
	switch {
	case errors.Is(planErr, batch.ErrNoTemplates):
		err = fieldError("templateIds", batch.MsgNoSlots)
		return
	case errors.Is(planErr, batch.ErrNoDays):
		err = fieldError("days", batch.MsgNoDays)
		return
	case errors.Is(planErr, batch.ErrInvalidMode):
		err = fieldError("mode", "Modo inválido")
		return
	case planErr != nil:
		err = planErr
		return
	}
	for _, day := range input.TargetDays {
		if !day.Valid() {
			err = fieldError("days", msgInvalidDay)
			return
		}
	}

	result.Skipped = plan.Skipped
	written := make(map[string]event.SlotTemplate, len(plan.Updates))
	for _, update := range plan.Updates {
		updated, writeErr := f.backend.UpdateSlotTemplate(ctx, update.Template)
		if writeErr != nil {
			writeErr = mapBackendError("UpdateSlotTemplate", writeErr)
			result.Failed = append(result.Failed, BatchFailure{TemplateID: update.TemplateID, Err: writeErr})
			if IsSessionError(writeErr) {
				err = writeErr
				break
			}
			continue
		}
		result.Updated = append(result.Updated, updated)
		written[updated.ID] = updated
	}

	if len(written) > 0 {
		f.store.update("ApplyDays", func(s *Snapshot) {
			for i, template := range s.SlotTemplates {
				if updated, ok := written[template.ID]; ok {
					s.SlotTemplates[i] = updated
				}
			}
		})
		m.reload()
	}
	return
}
