package timeline

import (
	"fmt"
	"time"

	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/roster"
)

// State is the position of an instant relative to a single interval.
type State string

const (
	StateBefore State = "BEFORE"
	StateActive State = "ACTIVE"
	StateAfter  State = "AFTER"
)

// IntervalState classifies now against the half-open interval [start, end).
func IntervalState(now, start, end int) State {
	switch {
	case now < start:
		return StateBefore
	case now < end:
		return StateActive
	default:
		return StateAfter
	}
}

// TripState classifies now against a trip's departure and arrival. The
// boolean is false when either time cannot be parsed.
func TripState(now int, departure, arrival string) (State, bool) {
	dep, ok := opclock.Parse(departure)
	if !ok {
		return "", false
	}
	arr, ok := opclock.Parse(arrival)
	if !ok {
		return "", false
	}
	return IntervalState(now, dep, arr), true
}

// StatusKind is the live state of a whole duty.
type StatusKind string

const (
	StatusNotStarted StatusKind = "NOT_STARTED"
	StatusFinished   StatusKind = "FINISHED"
	StatusLiveTrip   StatusKind = "LIVE_TRIP"
	StatusAtRest     StatusKind = "AT_REST"

	// StatusUnknown is reported for duties whose start or end cannot be
	// parsed.
	StatusUnknown StatusKind = "UNKNOWN"
)

// DutyStatus is the resolved live state of a duty.
type DutyStatus struct {
	Kind  StatusKind
	Label string

	// RemainingMinutes counts down to the end of the occupied interval, or
	// to the duty start for NOT_STARTED. Nil for FINISHED.
	RemainingMinutes *int

	// TripIndex points into the reference list for LIVE_TRIP; -1 otherwise.
	TripIndex int
	TripCode  string

	// SegmentIndex points into Build's output for LIVE_TRIP and AT_REST;
	// -1 otherwise.
	SegmentIndex int

	// Location and Rest describe the rest segment for AT_REST.
	Location string
	Rest     RestKind
}

// Target returns the UI anchor of the occupied row, or "" when the duty is
// not running.
func (s DutyStatus) Target() string {
	switch {
	case s.TripIndex >= 0:
		return fmt.Sprintf("trip-%d", s.TripIndex)
	case s.SegmentIndex >= 0:
		return fmt.Sprintf("segment-%d", s.SegmentIndex)
	default:
		return ""
	}
}

// ResolveDuty returns the live state of a duty at operational minute now.
// refs must be the same departure-sorted list passed to Build.
//
// An active trip outranks rest, and remaining minutes are measured to the
// end of the occupied interval, never to the duty end.
func ResolveDuty(duty roster.Duty, refs []roster.EnrichedTripReference, now int) DutyStatus {
	start, end, known := dutyBounds(duty)
	if !known {
		return DutyStatus{
			Kind:         StatusUnknown,
			Label:        "Schedule unknown",
			TripIndex:    -1,
			SegmentIndex: -1,
		}
	}

	if now < start {
		return DutyStatus{
			Kind:             StatusNotStarted,
			Label:            "Starts at " + opclock.FromMinutes(start),
			RemainingMinutes: minutes(start - now),
			TripIndex:        -1,
			SegmentIndex:     -1,
		}
	}

	if now >= end {
		return DutyStatus{
			Kind:         StatusFinished,
			Label:        "Finished at " + opclock.FromMinutes(end),
			TripIndex:    -1,
			SegmentIndex: -1,
		}
	}

	segments := Build(duty, refs)

	for i, ref := range refs {
		state, ok := TripState(now, ref.Departure, ref.Arrival)
		if !ok || state != StateActive {
			continue
		}

		arr := min(opclock.ToMinutes(ref.Arrival), end)
		return DutyStatus{
			Kind:             StatusLiveTrip,
			Label:            tripLabel(ref),
			RemainingMinutes: minutes(arr - now),
			TripIndex:        i,
			TripCode:         ref.TripCode,
			SegmentIndex:     segmentAt(segments, now),
		}
	}

	idx := segmentAt(segments, now)
	if idx < 0 {
		return DutyStatus{
			Kind:             StatusAtRest,
			Label:            restLabel(RestLong, duty.HomeLocation, end),
			RemainingMinutes: minutes(end - now),
			TripIndex:        -1,
			SegmentIndex:     -1,
			Location:         duty.HomeLocation,
			Rest:             RestLong,
		}
	}

	seg := segments[idx]
	return DutyStatus{
		Kind:             StatusAtRest,
		Label:            restLabel(seg.Rest, seg.Location, seg.End),
		RemainingMinutes: minutes(seg.End - now),
		TripIndex:        -1,
		SegmentIndex:     idx,
		Location:         seg.Location,
		Rest:             seg.Rest,
	}
}

// ResolveDutyAt is ResolveDuty for a host wall-clock instant.
func ResolveDutyAt(duty roster.Duty, refs []roster.EnrichedTripReference, t time.Time) DutyStatus {
	return ResolveDuty(duty, refs, opclock.FromTime(t))
}

func segmentAt(segments []Segment, now int) int {
	for i, s := range segments {
		if s.Contains(now) {
			return i
		}
	}
	return -1
}

func tripLabel(ref roster.EnrichedTripReference) string {
	code := ref.TripCode
	if code == "" {
		code = ref.Ref.Code
	}
	return fmt.Sprintf("Trip %s %s → %s, arrives %s",
		orUnknown(code), orUnknown(ref.Origin), orUnknown(ref.Destination), opclock.FromMinutes(opclock.ToMinutes(ref.Arrival)))
}

func restLabel(kind RestKind, location string, until int) string {
	verb := "Rest"
	if kind == RestWait {
		verb = "Wait"
	}
	return fmt.Sprintf("%s at %s until %s", verb, orUnknown(location), opclock.FromMinutes(until))
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func minutes(v int) *int {
	return &v
}
