package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/railops/railops/internal/contact"
	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/resolver"
	"github.com/railops/railops/internal/roster"
	"github.com/railops/railops/internal/timeline"
)

// DutyView is everything shown for one duty at one instant.
type DutyView struct {
	Duty     roster.Duty
	At       int
	Trips    []roster.EnrichedTripReference
	Timeline []timeline.Segment
	Status   timeline.DutyStatus
}

// CurrentTrip returns the trip the duty is riding, if any.
func (v *DutyView) CurrentTrip() *roster.EnrichedTripReference {
	if v.Status.Kind != timeline.StatusLiveTrip || v.Status.TripIndex < 0 || v.Status.TripIndex >= len(v.Trips) {
		return nil
	}
	ref := v.Trips[v.Status.TripIndex]
	return &ref
}

// BuildDutyView resolves, tiles and classifies one duty of snap at operational
// minute now.
func BuildDutyView(snap *roster.Snapshot, duty roster.Duty, now int) (*DutyView, error) {
	if _, ok := opclock.Parse(duty.Start); !ok {
		return nil, fmt.Errorf("duty %s: start %q: %w", duty.ID, duty.Start, ErrInvalidDuty)
	}
	if _, ok := opclock.Parse(duty.End); !ok {
		return nil, fmt.Errorf("duty %s: end %q: %w", duty.ID, duty.End, ErrInvalidDuty)
	}

	refs := resolver.ResolveDuty(snap, duty, snap.DutiesInService(duty.ServiceClass))

	return &DutyView{
		Duty:     duty,
		At:       now,
		Trips:    refs,
		Timeline: timeline.Build(duty, refs),
		Status:   timeline.ResolveDuty(duty, refs, now),
	}, nil
}

// DutyView returns the view of one duty at operational minute now.
func (s *Service) DutyView(ctx context.Context, id string, now int) (*DutyView, error) {
	ctx, span := s.tracer.Start(ctx, "engine.DutyView", trace.WithAttributes(attribute.String("railops.duty_id", id)))
	defer span.End()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	duty, ok := snap.Duty(id)
	if !ok {
		return nil, fmt.Errorf("duty %s: %w", id, roster.ErrDutyNotFound)
	}

	view, err := BuildDutyView(snap, duty, now)
	if err != nil {
		return nil, err
	}

	s.instruments.RecordStatus(ctx, string(view.Status.Kind))
	return view, nil
}

// BoardEntry is one row of a service board.
type BoardEntry struct {
	DutyID       string
	ServiceClass string
	Start        string
	End          string
	HomeLocation string
	Status       timeline.DutyStatus

	// Current is the trip being ridden for LIVE_TRIP, nil otherwise.
	Current *roster.EnrichedTripReference

	// Invalid is set for duties with a missing or malformed start or end;
	// Status is zero.
	Invalid bool
}

// Board is the live state of every duty of a service class.
type Board struct {
	ServiceClass string
	At           int
	Entries      []BoardEntry
	Counts       map[timeline.StatusKind]int
}

// BuildBoard computes the board for serviceClass (all duties when empty).
func BuildBoard(snap *roster.Snapshot, serviceClass string, now int) *Board {
	duties := snap.Duties()
	if serviceClass != "" {
		duties = snap.DutiesInService(serviceClass)
	}

	p := pool.NewWithResults[BoardEntry]().WithMaxGoroutines(32)
	for _, duty := range duties {
		p.Go(func() BoardEntry {
			entry := BoardEntry{
				DutyID:       duty.ID,
				ServiceClass: duty.ServiceClass,
				Start:        duty.Start,
				End:          duty.End,
				HomeLocation: duty.HomeLocation,
			}

			view, err := BuildDutyView(snap, duty, now)
			if err != nil {
				entry.Invalid = true
				return entry
			}
			entry.Status = view.Status
			entry.Current = view.CurrentTrip()
			return entry
		})
	}
	entries := p.Wait()

	sort.Slice(entries, func(i, j int) bool { return entries[i].DutyID < entries[j].DutyID })

	counts := make(map[timeline.StatusKind]int)
	for _, e := range entries {
		if !e.Invalid {
			counts[e.Status.Kind]++
		}
	}

	return &Board{
		ServiceClass: serviceClass,
		At:           now,
		Entries:      entries,
		Counts:       counts,
	}
}

// Board returns the live board of a service class at operational minute now.
func (s *Service) Board(ctx context.Context, serviceClass string, now int) (*Board, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.BoardFrom(ctx, snap, serviceClass, now), nil
}

// BoardFrom is Board over an already loaded snapshot.
func (s *Service) BoardFrom(ctx context.Context, snap *roster.Snapshot, serviceClass string, now int) *Board {
	ctx, span := s.tracer.Start(ctx, "engine.Board", trace.WithAttributes(attribute.String("railops.service_class", serviceClass)))
	defer span.End()

	board := BuildBoard(snap, serviceClass, now)
	for _, e := range board.Entries {
		if e.Invalid {
			s.logger.Debug().Str("duty_id", e.DutyID).Msg("skipping duty without a valid start or end")
			continue
		}
		s.instruments.RecordStatus(ctx, string(e.Status.Kind))
	}
	span.SetAttributes(attribute.Int("railops.duties", len(board.Entries)))

	return board
}

// TripStateView is the interval state of one trip.
type TripStateView struct {
	Trip roster.EnrichedTripReference
	At   int

	// State is empty when the trip times are unknown.
	State timeline.State
}

// TripState returns whether a trip is before, running or after at now.
func (s *Service) TripState(ctx context.Context, code string, now int) (*TripStateView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := snap.Trip(code); !ok {
		return nil, fmt.Errorf("trip %s: %w", code, roster.ErrTripNotFound)
	}

	ref := resolver.ResolveReference(snap, roster.NewTripReference(code, "", ""), 0, roster.Duty{}, nil)
	state, _ := timeline.TripState(now, ref.Departure, ref.Arrival)

	return &TripStateView{Trip: ref, At: now, State: state}, nil
}

// UnitView is the contact channel and maintenance state of one unit.
type UnitView struct {
	UnitID  string
	Contact string
	Status  *roster.UnitStatus
}

// UnitContact returns the contact channel and status of a unit. It fails with
// roster.ErrUnitNotFound when neither is known.
func (s *Service) UnitContact(ctx context.Context, unitID string) (*UnitView, error) {
	view := &UnitView{UnitID: unitID}
	view.Contact, _ = contact.For(unitID)

	snap, err := s.Snapshot(ctx)
	if err != nil {
		if view.Contact == "" {
			return nil, err
		}
		s.logger.Warn().Err(err).Str("unit_id", unitID).Msg("unit status unavailable")
		return view, nil
	}

	if st, ok := snap.UnitStatus(unitID); ok {
		view.Status = &st
	}

	if view.Contact == "" && view.Status == nil {
		return nil, fmt.Errorf("unit %s: %w", unitID, roster.ErrUnitNotFound)
	}
	return view, nil
}
