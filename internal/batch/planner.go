// Package batch plans day reassignment across many slot templates at once.
// Planning is pure; the mutation façade performs the writes.
package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/hacktown-ops/internal/event"
)

// Mode selects how target days combine with a template's current days.
type Mode string

const (
	ModeReplace Mode = "replace"
	ModeAdd     Mode = "add"
	ModeRemove  Mode = "remove"
)

// Validation messages surfaced to the user.
const (
	MsgNoSlots = "Selecione pelo menos um slot"
	MsgNoDays  = "Selecione pelo menos um dia"
)

// Skip reasons.
const (
	ReasonNotFound = "slot não encontrado"
	ReasonEmptied  = "a remoção deixaria o slot sem dias"
)

var (
	ErrNoTemplates = errors.New(MsgNoSlots)
	ErrNoDays      = errors.New(MsgNoDays)
	ErrInvalidMode = errors.New("modo inválido")
)

// ParseMode accepts the three mode tokens, case-insensitively.
func ParseMode(value string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(value))); mode {
	case ModeReplace, ModeAdd, ModeRemove:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, value)
	}
}

// Update is the new scope for one template.
type Update struct {
	TemplateID string
	Template   event.SlotTemplate
	Days       []event.WeekDay
}

// Skip records a template left unchanged.
type Skip struct {
	TemplateID string
	Reason     string
}

// Plan is the outcome of planning a batch.
type Plan struct {
	Updates []Update
	Skipped []Skip
}

// Request describes a batch reassignment.
type Request struct {
	TemplateIDs []string
	TargetDays  []event.WeekDay
	Mode        Mode
}

// Build computes the per-template updates.
//
// Add and remove start from the template's effective days, so explicit days
// outside selectedDays are dropped. A remove that would leave no effective days
// is skipped instead of writing a template that expands to nothing.
// Duplicate ids are planned once. Template updates are returned in request
// order.
func Build(templates []event.SlotTemplate, req Request, selectedDays []event.WeekDay) (Plan, error) {
	if len(req.TemplateIDs) == 0 {
		return Plan{}, ErrNoTemplates
	}
	target := event.SortDays(req.TargetDays)
	if len(target) == 0 {
		return Plan{}, ErrNoDays
	}
	switch req.Mode {
	case ModeReplace, ModeAdd, ModeRemove:
	default:
		return Plan{}, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	byID := make(map[string]event.SlotTemplate, len(templates))
	for _, template := range templates {
		byID[template.ID] = template
	}

	var plan Plan
	seen := make(map[string]struct{}, len(req.TemplateIDs))
	for _, id := range req.TemplateIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		template, ok := byID[id]
		if !ok {
			plan.Skipped = append(plan.Skipped, Skip{TemplateID: id, Reason: ReasonNotFound})
			continue
		}

		current := template.Scope.Effective(selectedDays)
		var days []event.WeekDay
		switch req.Mode {
		case ModeReplace:
			days = target
		case ModeAdd:
			days = event.UnionDays(current, target)
		case ModeRemove:
			days = event.SubtractDays(current, target)
			if len(days) == 0 {
				plan.Skipped = append(plan.Skipped, Skip{TemplateID: id, Reason: ReasonEmptied})
				continue
			}
		}

		updated := template
		updated.Scope = event.Explicit(days...)
		plan.Updates = append(plan.Updates, Update{TemplateID: id, Template: updated, Days: updated.Scope.Days()})
	}
	return plan, nil
}
