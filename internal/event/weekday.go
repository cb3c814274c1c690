// Package event defines the Hacktown domain model shared by the expansion,
// aggregation and capacity packages: weekdays and day scopes, venues, slot
// templates, activities and their per-day assignments.
package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// WeekDay is one of the seven lowercase day tokens used on the wire.
type WeekDay string

const (
	Segunda WeekDay = "segunda"
	Terca   WeekDay = "terca"
	Quarta  WeekDay = "quarta"
	Quinta  WeekDay = "quinta"
	Sexta   WeekDay = "sexta"
	Sabado  WeekDay = "sabado"
	Domingo WeekDay = "domingo"
)

// ErrInvalidWeekDay is returned when a token does not name a known weekday.
var ErrInvalidWeekDay = errors.New("event: invalid weekday")

var weekdaysOrder = [...]WeekDay{Segunda, Terca, Quarta, Quinta, Sexta, Sabado, Domingo}

var weekdayLabels = map[WeekDay]string{
	Segunda: "Segunda-feira",
	Terca:   "Terça-feira",
	Quarta:  "Quarta-feira",
	Quinta:  "Quinta-feira",
	Sexta:   "Sexta-feira",
	Sabado:  "Sábado",
	Domingo: "Domingo",
}

var weekdayShortLabels = map[WeekDay]string{
	Segunda: "Seg",
	Terca:   "Ter",
	Quarta:  "Qua",
	Quinta:  "Qui",
	Sexta:   "Sex",
	Sabado:  "Sáb",
	Domingo: "Dom",
}

// WeekdaysOrder returns the canonical calendar order, Monday first.
func WeekdaysOrder() []WeekDay {
	out := make([]WeekDay, len(weekdaysOrder))
	copy(out, weekdaysOrder[:])
	return out
}

// ParseWeekDay normalizes and validates a weekday token.
func ParseWeekDay(value string) (WeekDay, error) {
	day := WeekDay(strings.ToLower(strings.TrimSpace(value)))
	if !day.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekDay, value)
	}
	return day, nil
}

// Valid reports whether the day is one of the seven known tokens.
func (d WeekDay) Valid() bool {
	return d.Index() >= 0
}

// Index returns the position of the day in the canonical order, or -1.
func (d WeekDay) Index() int {
	for i, candidate := range weekdaysOrder {
		if candidate == d {
			return i
		}
	}
	return -1
}

// Label returns the full Portuguese name, e.g. "Segunda-feira".
func (d WeekDay) Label() string {
	if label, ok := weekdayLabels[d]; ok {
		return label
	}
	return string(d)
}

// ShortLabel returns the three letter abbreviation used by charts.
func (d WeekDay) ShortLabel() string {
	if label, ok := weekdayShortLabels[d]; ok {
		return label
	}
	return string(d)
}

func (d WeekDay) String() string { return string(d) }

// SortDays returns a de-duplicated copy of days in canonical order. Unknown
// tokens are dropped.
func SortDays(days []WeekDay) []WeekDay {
	if len(days) == 0 {
		return []WeekDay{}
	}
	seen := make(map[WeekDay]struct{}, len(days))
	out := make([]WeekDay, 0, len(days))
	for _, day := range days {
		if !day.Valid() {
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// ParseDays validates each token and returns the canonical set.
func ParseDays(values []string) ([]WeekDay, error) {
	days := make([]WeekDay, 0, len(values))
	for _, value := range values {
		day, err := ParseWeekDay(value)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return SortDays(days), nil
}

// ContainsDay reports whether day is a member of days.
func ContainsDay(days []WeekDay, day WeekDay) bool {
	for _, candidate := range days {
		if candidate == day {
			return true
		}
	}
	return false
}

// IntersectDays returns the canonical set of days present in both inputs.
func IntersectDays(a, b []WeekDay) []WeekDay {
	out := make([]WeekDay, 0, len(a))
	for _, day := range a {
		if ContainsDay(b, day) {
			out = append(out, day)
		}
	}
	return SortDays(out)
}

// UnionDays returns the canonical set of days present in either input.
func UnionDays(a, b []WeekDay) []WeekDay {
	out := make([]WeekDay, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return SortDays(out)
}

// SubtractDays returns the canonical set of days in a that are not in b.
func SubtractDays(a, b []WeekDay) []WeekDay {
	out := make([]WeekDay, 0, len(a))
	for _, day := range a {
		if !ContainsDay(b, day) {
			out = append(out, day)
		}
	}
	return SortDays(out)
}

// EqualDaySets compares day sets ignoring order and duplicates.
func EqualDaySets(a, b []WeekDay) bool {
	left, right := SortDays(a), SortDays(b)
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}
