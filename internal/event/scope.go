package event

// DayScope is the day restriction of a slot template. The zero value is
// AllSelected: the template follows the live set of event days. An explicit
// scope names its own days, which are still intersected with the event days
// at expansion time.
type DayScope struct {
	explicit bool
	days     []WeekDay
}

// AllSelected returns the dynamic scope tracking the event's selected days.
func AllSelected() DayScope {
	return DayScope{}
}

// Explicit returns a scope restricted to the given days. The days are stored
// de-duplicated in canonical order. An explicit scope may be empty, in which
// case it expands to nothing.
func Explicit(days ...WeekDay) DayScope {
	return DayScope{explicit: true, days: SortDays(days)}
}

// ScopeFromDays mirrors the wire convention: an absent or empty list means
// AllSelected.
func ScopeFromDays(days []WeekDay) DayScope {
	sorted := SortDays(days)
	if len(sorted) == 0 {
		return AllSelected()
	}
	return DayScope{explicit: true, days: sorted}
}

// IsAllSelected reports whether the scope follows the event days.
func (s DayScope) IsAllSelected() bool {
	return !s.explicit
}

// Days returns a copy of the explicit days, or nil for AllSelected.
func (s DayScope) Days() []WeekDay {
	if !s.explicit {
		return nil
	}
	out := make([]WeekDay, len(s.days))
	copy(out, s.days)
	return out
}

// Effective returns the days the scope expands to for the given event days.
func (s DayScope) Effective(selected []WeekDay) []WeekDay {
	if !s.explicit {
		return SortDays(selected)
	}
	return IntersectDays(s.days, selected)
}

// Equal compares two scopes by variant and day set.
func (s DayScope) Equal(other DayScope) bool {
	if s.explicit != other.explicit {
		return false
	}
	return EqualDaySets(s.days, other.days)
}

// WireDays returns the explicit day list for serialization; AllSelected
// yields nil so the field can be omitted.
func (s DayScope) WireDays() []string {
	if !s.explicit {
		return nil
	}
	out := make([]string, 0, len(s.days))
	for _, day := range s.days {
		out = append(out, string(day))
	}
	return out
}
