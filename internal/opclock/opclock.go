// Package opclock converts wall-clock times to operational minutes.
//
// The operating day runs from 04:00 to 03:59 of the next calendar day. Times
// with an hour below DayBoundaryHour are shifted by one full day so that
// post-midnight service sorts after the evening within the same duty.
package opclock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DayMinutes is the length of a calendar day in minutes.
	DayMinutes = 24 * 60

	// DayBoundaryHour is the first hour of the operating day.
	DayBoundaryHour = 4

	// Unknown is returned for empty or malformed input. A valid time never
	// maps to Unknown: 00:00 maps to 1440.
	Unknown = 0
)

// Parse converts "HH:MM" (or "H:MM", optionally followed by ":SS") to
// operational minutes. The boolean is false when the input is malformed.
func Parse(hhmm string) (int, bool) {
	s := strings.TrimSpace(hhmm)
	if s == "" {
		return Unknown, false
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Unknown, false
	}
	if len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return Unknown, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Unknown, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Unknown, false
	}

	return shift(hour, minute), true
}

// ToMinutes is Parse without the validity flag. Callers must treat Unknown
// as "no time", never as midnight.
func ToMinutes(hhmm string) int {
	m, _ := Parse(hhmm)
	return m
}

// FromMinutes formats operational minutes as "HH:MM", wrapping values past
// the end of the calendar day back into [0, 1440).
func FromMinutes(v int) string {
	v %= DayMinutes
	if v < 0 {
		v += DayMinutes
	}
	return fmt.Sprintf("%02d:%02d", v/60, v%60)
}

// FromTime converts a host wall-clock instant to operational minutes in the
// instant's own location. Seconds are truncated.
func FromTime(t time.Time) int {
	return shift(t.Hour(), t.Minute())
}

// GapMinutes returns ToMinutes(to) - ToMinutes(from). Non-positive results
// mean there is no gap.
func GapMinutes(from, to string) int {
	return ToMinutes(to) - ToMinutes(from)
}

// IsWithin reports whether start <= now < end. It is false if either bound
// cannot be parsed.
func IsWithin(now int, start, end string) bool {
	s, ok := Parse(start)
	if !ok {
		return false
	}
	e, ok := Parse(end)
	if !ok {
		return false
	}
	return s <= now && now < e
}

func shift(hour, minute int) int {
	m := hour*60 + minute
	if hour < DayBoundaryHour {
		m += DayMinutes
	}
	return m
}
