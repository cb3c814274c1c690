package event

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidClock indicates a wall-clock value that is not "HH:MM".
var ErrInvalidClock = errors.New("event: invalid clock time")

// MinutesPerDay bounds minute-of-day values.
const MinutesPerDay = 24 * 60

// ParseClock converts a 24-hour "HH:MM" value into minutes since midnight.
func ParseClock(value string) (int, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 23 || len(hours) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 || len(minutes) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as zero padded "HH:MM".
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// TimeKey joins a start and end time as "HH:MM-HH:MM".
func TimeKey(start, end string) string {
	return start + "-" + end
}

// ClockHour returns the text before the colon of a "HH:MM" value, or "N/A"
// when the value is empty.
func ClockHour(value string) string {
	hour, _, _ := strings.Cut(value, ":")
	if hour == "" {
		return "N/A"
	}
	return hour
}
