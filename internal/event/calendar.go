package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire layout of event dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate indicates a date that is not "YYYY-MM-DD".
var ErrInvalidDate = errors.New("event: invalid date")

// ParseDate parses a "YYYY-MM-DD" value at midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// WeekDayOf maps a calendar date to its WeekDay token.
func WeekDayOf(t time.Time) WeekDay {
	switch t.Weekday() {
	case time.Monday:
		return Segunda
	case time.Tuesday:
		return Terca
	case time.Wednesday:
		return Quarta
	case time.Thursday:
		return Quinta
	case time.Friday:
		return Sexta
	case time.Saturday:
		return Sabado
	default:
		return Domingo
	}
}

// WeekDaysBetween lists the distinct weekdays covered by the inclusive date
// range in chronological order of first appearance. Without a usable range
// it returns the canonical order.
func WeekDaysBetween(startDate, endDate string) []WeekDay {
	start, errStart := ParseDate(startDate)
	end, errEnd := ParseDate(endDate)
	if errStart != nil || errEnd != nil {
		return WeekdaysOrder()
	}

	seen := make(map[WeekDay]struct{}, 7)
	out := make([]WeekDay, 0, 7)
	for current := start; !current.After(end) && len(out) < 7; current = current.AddDate(0, 0, 1) {
		day := WeekDayOf(current)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

// DateForWeekDay returns the first date in the inclusive range falling on day,
// formatted "YYYY-MM-DD". The boolean is false when the range does not contain
// that weekday or is unusable.
func DateForWeekDay(day WeekDay, startDate, endDate string) (string, bool) {
	start, errStart := ParseDate(startDate)
	end, errEnd := ParseDate(endDate)
	if errStart != nil || errEnd != nil {
		return "", false
	}
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if WeekDayOf(current) == day {
			return current.Format(DateLayout), true
		}
	}
	return "", false
}

// DaysInCalendarOrder orders selected days by the date each one falls on in
// the event range. Days without a date in the range go last in canonical
// order. Without a usable range the canonical order is returned.
func DaysInCalendarOrder(selected []WeekDay, startDate, endDate string) []WeekDay {
	days := SortDays(selected)
	if _, err := ParseDate(startDate); err != nil {
		return days
	}
	if _, err := ParseDate(endDate); err != nil {
		return days
	}

	dates := make(map[WeekDay]string, len(days))
	for _, day := range days {
		if date, ok := DateForWeekDay(day, startDate, endDate); ok {
			dates[day] = date
		} else {
			dates[day] = "9999-12-31"
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return dates[days[i]] < dates[days[j]] })
	return days
}
