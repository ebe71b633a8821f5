// Package resolver turns raw trip references into enriched references by
// following proxy links, cycle assignments and unit status.
package resolver

import (
	"github.com/railops/railops/internal/contact"
	"github.com/railops/railops/internal/roster"
	"github.com/railops/railops/internal/timeline"
)

// Catalog is the read-only lookup surface the resolver needs.
// *roster.Snapshot satisfies it.
type Catalog interface {
	Trip(code string) (roster.Trip, bool)
	UnitForCycle(cycleID string) (string, bool)
	UnitStatus(unitID string) (roster.UnitStatus, bool)
}

var _ Catalog = (*roster.Snapshot)(nil)

// ResolveReference enriches one reference of duty. dutiesInService is the
// list proxy cycle lookups scan, in the order they should be scanned.
//
// Anything that cannot be found is left as a zero value.
func ResolveReference(cat Catalog, ref roster.TripReference, position int, duty roster.Duty, dutiesInService []roster.Duty) roster.EnrichedTripReference {
	link := ref.Target()

	out := roster.EnrichedTripReference{
		Ref:      ref,
		Link:     link,
		Position: position,
		TripCode: link.TripCode,
	}

	var trip roster.Trip
	if link.TripCode != "" {
		if t, ok := cat.Trip(link.TripCode); ok {
			t.Stops = append([]roster.Stop(nil), t.Stops...)
			trip = t
			out.Trip = &t
			out.Line = t.Line
			out.Origin = t.Origin
			out.Destination = t.Destination
			out.Departure = t.Departure
			out.Arrival = t.Arrival
		}
	}

	switch link.Kind {
	case roster.LinkProxy:
		out.CycleID = cycleFromOtherDuties(link.TripCode, duty, dutiesInService)
		if out.CycleID == "" {
			out.CycleID = trip.CycleID
		}
		if out.CycleID == "" {
			out.CycleID = ref.CycleID
		}
		if link.OriginOverride != "" {
			out.Origin = link.OriginOverride
		}
		if link.DestinationOverride != "" {
			out.Destination = link.DestinationOverride
		}
	default:
		out.CycleID = ref.CycleID
		if out.CycleID == "" {
			out.CycleID = trip.CycleID
		}
	}

	if out.CycleID == "" {
		return out
	}

	unitID, ok := cat.UnitForCycle(out.CycleID)
	if !ok || unitID == "" {
		return out
	}
	out.UnitID = unitID
	out.Contact, _ = contact.For(unitID)

	if st, ok := cat.UnitStatus(unitID); ok {
		out.Status = &st
	}

	return out
}

// ResolveDuty enriches every reference of duty and returns them sorted by
// departure, ready for timeline.Build and timeline.ResolveDuty. Position keeps
// the roster index of each reference.
func ResolveDuty(cat Catalog, duty roster.Duty, dutiesInService []roster.Duty) []roster.EnrichedTripReference {
	refs := make([]roster.EnrichedTripReference, 0, len(duty.Trips))
	for i, ref := range duty.Trips {
		refs = append(refs, ResolveReference(cat, ref, i, duty, dutiesInService))
	}
	return timeline.SortByDeparture(refs)
}

// cycleFromOtherDuties finds the cycle another duty of the same service class
// runs code with. The first match in scan order wins.
func cycleFromOtherDuties(code string, duty roster.Duty, duties []roster.Duty) string {
	if code == "" {
		return ""
	}
	for _, other := range duties {
		if other.ID == duty.ID || other.ServiceClass != duty.ServiceClass {
			continue
		}
		for _, r := range other.Trips {
			l := r.Target()
			if l.Kind == roster.LinkDirect && l.TripCode == code && r.CycleID != "" {
				return r.CycleID
			}
		}
	}
	return ""
}
