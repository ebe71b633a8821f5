package models

import (
	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/roster"
	"github.com/railops/railops/internal/timeline"
)

// NewTripRef converts a resolved trip reference.
func NewTripRef(ref roster.EnrichedTripReference) TripRef {
	out := TripRef{
		Position:    ref.Position,
		Code:        ref.Ref.Code,
		Proxy:       ref.IsProxy(),
		Known:       ref.HasTrip(),
		TripCode:    ref.TripCode,
		Line:        ref.Line,
		Origin:      ref.Origin,
		Destination: ref.Destination,
		Departure:   ref.Departure,
		Arrival:     ref.Arrival,
		CycleID:     ref.CycleID,
		UnitID:      ref.UnitID,
		Contact:     ref.Contact,
		Status:      NewUnitStatus(ref.Status),
	}
	if ref.Trip != nil {
		out.OriginPlatform = ref.Trip.OriginPlatform
		out.DestinationPlatform = ref.Trip.DestinationPlatform
		for _, s := range ref.Trip.Stops {
			out.Stops = append(out.Stops, Stop{Name: s.Name, Time: s.Time, Platform: s.Platform})
		}
	}
	return out
}

// NewUnitStatus converts unit flags; nil stays nil.
func NewUnitStatus(s *roster.UnitStatus) *UnitStatus {
	if s == nil {
		return nil
	}
	return &UnitStatus{
		OutOfService:   s.OutOfService,
		NeedsPhotos:    s.NeedsPhotos,
		NeedsPaperwork: s.NeedsPaperwork,
		NeedsCleaning:  s.NeedsCleaning,
		PendingWork:    s.HasPendingWork(),
	}
}

func NewSegment(s timeline.Segment) Segment {
	out := Segment{
		Kind:     string(s.Kind),
		Start:    s.StartTime(),
		End:      s.EndTime(),
		Duration: s.Duration(),
	}
	if s.Kind == timeline.KindRest {
		out.Location = s.Location
		out.Tag = string(s.Tag)
		out.Rest = string(s.Rest)
		return out
	}
	idx := s.TripIndex
	out.TripIndex = &idx
	out.TripCode = s.TripCode
	out.Line = s.Line
	out.CycleID = s.CycleID
	out.UnitID = s.UnitID
	return out
}

// NewDutyStatus converts a resolved duty status.
func NewDutyStatus(s timeline.DutyStatus) DutyStatus {
	return DutyStatus{
		Kind:             string(s.Kind),
		Label:            s.Label,
		RemainingMinutes: s.RemainingMinutes,
		Target:           s.Target(),
		TripCode:         s.TripCode,
		Location:         s.Location,
		Rest:             string(s.Rest),
	}
}

// NewDuty converts a full duty view.
func NewDuty(v *engine.DutyView) Duty {
	out := Duty{
		ID:           v.Duty.ID,
		ServiceClass: v.Duty.ServiceClass,
		Start:        v.Duty.Start,
		End:          v.Duty.End,
		HomeLocation: v.Duty.HomeLocation,
		At:           opclock.FromMinutes(v.At),
		Status:       NewDutyStatus(v.Status),
		Trips:        make([]TripRef, 0, len(v.Trips)),
		Timeline:     make([]Segment, 0, len(v.Timeline)),
	}
	for _, ref := range v.Trips {
		out.Trips = append(out.Trips, NewTripRef(ref))
	}
	for _, seg := range v.Timeline {
		out.Timeline = append(out.Timeline, NewSegment(seg))
	}
	return out
}

// NewBoard converts a service board.
func NewBoard(b *engine.Board) Board {
	out := Board{
		ServiceClass: b.ServiceClass,
		At:           opclock.FromMinutes(b.At),
		Counts:       make(map[string]int, len(b.Counts)),
		Items:        make([]BoardEntry, 0, len(b.Entries)),
	}
	for kind, n := range b.Counts {
		out.Counts[string(kind)] = n
	}
	for _, e := range b.Entries {
		entry := BoardEntry{
			DutyID:       e.DutyID,
			ServiceClass: e.ServiceClass,
			Start:        e.Start,
			End:          e.End,
			HomeLocation: e.HomeLocation,
			Invalid:      e.Invalid,
		}
		if !e.Invalid {
			st := NewDutyStatus(e.Status)
			entry.Status = &st
		}
		if e.Current != nil {
			cur := NewTripRef(*e.Current)
			entry.Current = &cur
		}
		out.Items = append(out.Items, entry)
	}
	return out
}

// NewTripState converts a trip state view.
func NewTripState(v *engine.TripStateView) TripState {
	return TripState{
		At:    opclock.FromMinutes(v.At),
		State: string(v.State),
		Trip:  NewTripRef(v.Trip),
	}
}

// NewUnitContact converts a unit view.
func NewUnitContact(v *engine.UnitView) UnitContact {
	return UnitContact{
		UnitID:  v.UnitID,
		Contact: v.Contact,
		Status:  NewUnitStatus(v.Status),
	}
}
