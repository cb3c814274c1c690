package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/example/hacktown-ops/internal/event"
)

// Validation messages surfaced to organizers.
const (
	msgRequired       = "Campo obrigatório"
	msgSelectDay      = "Selecione pelo menos um dia"
	msgInvalidClock   = "Horário inválido (use HH:MM)"
	msgInvalidDay     = "Dia inválido"
	msgInvalidDate    = "Data inválida (use AAAA-MM-DD)"
	msgEndBeforeStart = "O horário de término deve ser após o início"
	msgDatesOrder     = "A data final deve ser igual ou posterior à inicial"
	msgUnknownVenue   = "Venue não encontrado"
	msgInvalidType    = "Tipo de atividade inválido"
	msgInvalidStruct  = "Tipo de estrutura inválido"
	msgSlotMissing    = "Slot inexistente para este dia"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return wireFieldName(field.Name)
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := event.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return event.WeekDay(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("structure_type", func(fl validator.FieldLevel) bool {
		return event.StructureType(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct runs the tag pass and translates failures into field
// messages.
func validateStruct(v *validator.Validate, input any) *ValidationError {
	vErr := &ValidationError{}
	err := v.Struct(input)
	if err == nil {
		return vErr
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("input", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field(), describeFieldError(fe))
	}
	return vErr
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "clock":
		return msgInvalidClock
	case "weekday":
		return msgInvalidDay
	case "structure_type":
		return msgInvalidStruct
	case "gte":
		return fmt.Sprintf("Deve ser maior ou igual a %s", fe.Param())
	case "max":
		return fmt.Sprintf("Máximo de %s caracteres", fe.Param())
	default:
		return "Valor inválido"
	}
}

// wireFieldName maps a Go field name to its camelCase wire key: VenueID
// becomes venueId.
func wireFieldName(name string) string {
	name = lowerFirst(name)
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	return name
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func validateVenueInput(v *validator.Validate, input VenueInput) *ValidationError {
	return validateStruct(v, input)
}

func validateSlotTemplateInput(v *validator.Validate, input SlotTemplateInput, venues []event.Venue) *ValidationError {
	vErr := validateStruct(v, input)

	if !input.AllDays && len(input.Days) == 0 {
		vErr.add("days", msgSelectDay)
	}
	if _, hasStart := vErr.FieldErrors["startTime"]; !hasStart {
		if _, hasEnd := vErr.FieldErrors["endTime"]; !hasEnd {
			start, _ := event.ParseClock(input.StartTime)
			end, _ := event.ParseClock(input.EndTime)
			if start >= end {
				vErr.add("endTime", msgEndBeforeStart)
			}
		}
	}
	if input.VenueID != "" && !venueExists(venues, input.VenueID) {
		vErr.add("venueId", msgUnknownVenue)
	}
	return vErr
}

func validateActivityInput(v *validator.Validate, input ActivityInput) *ValidationError {
	return validateStruct(v, input)
}

func venueExists(venues []event.Venue, id string) bool {
	for _, venue := range venues {
		if venue.ID == id {
			return true
		}
	}
	return false
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func scopeFromInput(input SlotTemplateInput) event.DayScope {
	if input.AllDays {
		return event.AllSelected()
	}
	return event.Explicit(input.Days...)
}
