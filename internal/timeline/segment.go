// Package timeline builds the gap-filled activity/rest timeline of a duty
// and resolves its live state at a given operational minute.
package timeline

import (
	"sort"

	"github.com/railops/railops/internal/classify"
	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/roster"
)

// Kind is the type of a timeline segment.
type Kind string

const (
	KindRest     Kind = "rest"
	KindActivity Kind = "activity"
)

// RestKind labels a rest segment by its length.
type RestKind string

const (
	RestLong RestKind = "rest"
	RestWait RestKind = "wait"
)

// RestThreshold is the shortest gap, in minutes, shown as a rest rather
// than a wait.
const RestThreshold = 15

// Segment is a half-open interval [Start, End) of operational minutes.
type Segment struct {
	Kind  Kind
	Start int
	End   int

	// Rest segments.
	Location string
	Tag      classify.Tag
	Rest     RestKind

	// Activity segments. TripIndex points into the list passed to Build.
	TripIndex   int
	TripCode    string
	Line        string
	Origin      string
	Destination string
	CycleID     string
	UnitID      string
}

// Duration returns the segment length in minutes.
func (s Segment) Duration() int {
	return s.End - s.Start
}

// Contains reports whether now falls in [Start, End).
func (s Segment) Contains(now int) bool {
	return s.Start <= now && now < s.End
}

// StartTime formats Start as "HH:MM".
func (s Segment) StartTime() string {
	return opclock.FromMinutes(s.Start)
}

// EndTime formats End as "HH:MM".
func (s Segment) EndTime() string {
	return opclock.FromMinutes(s.End)
}

// SortByDeparture returns a copy of refs stably sorted by departure in
// operational minutes. References with unknown departure keep their relative
// order at the end.
func SortByDeparture(refs []roster.EnrichedTripReference) []roster.EnrichedTripReference {
	sorted := append([]roster.EnrichedTripReference(nil), refs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, oki := opclock.Parse(sorted[i].Departure)
		dj, okj := opclock.Parse(sorted[j].Departure)
		if oki != okj {
			return oki
		}
		return di < dj
	})
	return sorted
}

// Build returns the segments tiling [duty.Start, duty.End). refs must be
// sorted by departure. The result is empty when the duty has no positive
// duration.
//
// Rest gaps are labeled with the location at their trailing boundary: the
// home location (or origin override) before the first trip, the previous
// trip's destination afterwards. Trips that cannot be placed with a positive
// width inside the remaining duty time produce no segment.
func Build(duty roster.Duty, refs []roster.EnrichedTripReference) []Segment {
	start, end, known := dutyBounds(duty)
	if !known || end <= start {
		return nil
	}

	var segments []Segment
	cursor := start
	location := duty.HomeLocation
	placed := 0

	for i, ref := range refs {
		if cursor >= end {
			break
		}

		dep, okDep := opclock.Parse(ref.Departure)
		arr, okArr := opclock.Parse(ref.Arrival)
		if !okDep || !okArr {
			continue
		}

		from := max(dep, cursor)
		to := min(arr, end)
		if to <= from {
			continue
		}

		label := location
		if placed == 0 && ref.Link.OriginOverride != "" {
			label = ref.Link.OriginOverride
		}
		if label == "" {
			label = ref.Origin
		}

		if from > cursor {
			segments = append(segments, restSegment(cursor, from, label))
		}

		segments = append(segments, Segment{
			Kind:        KindActivity,
			Start:       from,
			End:         to,
			TripIndex:   i,
			TripCode:    ref.TripCode,
			Line:        ref.Line,
			Origin:      ref.Origin,
			Destination: ref.Destination,
			CycleID:     ref.CycleID,
			UnitID:      ref.UnitID,
		})

		cursor = to
		location = ref.Destination
		placed++
	}

	if cursor < end {
		if location == "" {
			location = duty.HomeLocation
		}
		segments = append(segments, restSegment(cursor, end, location))
	}

	return segments
}

func restSegment(start, end int, location string) Segment {
	rest := RestWait
	if end-start >= RestThreshold {
		rest = RestLong
	}
	return Segment{
		Kind:      KindRest,
		Start:     start,
		End:       end,
		Location:  location,
		Tag:       classify.Classify(location),
		Rest:      rest,
		TripIndex: -1,
	}
}

// dutyBounds returns the duty span in operational minutes. known is false
// when either bound cannot be parsed.
func dutyBounds(duty roster.Duty) (start, end int, known bool) {
	start, startOK := opclock.Parse(duty.Start)
	end, endOK := opclock.Parse(duty.End)
	return start, end, startOK && endOK
}
