package roster

import "context"

// DutyFilter selects duties. Empty fields match everything.
type DutyFilter struct {
	ServiceClass string
	IDs          []string
}

// TripFilter selects trips. Empty fields match everything.
type TripFilter struct {
	Codes []string
	Line  string
}

// DutyRepository reads duties. Results are ordered by duty ID.
type DutyRepository interface {
	// GetDuty returns ErrDutyNotFound if the duty does not exist.
	GetDuty(ctx context.Context, id string) (*Duty, error)

	FindDuties(ctx context.Context, filter DutyFilter) ([]*Duty, error)
}

// TripRepository reads the timetable.
type TripRepository interface {
	// GetTrip returns ErrTripNotFound if the trip does not exist.
	GetTrip(ctx context.Context, code string) (*Trip, error)

	FindTrips(ctx context.Context, filter TripFilter) ([]*Trip, error)
}

// UnitRepository reads the cycle assignment and unit status tables.
type UnitRepository interface {
	// GetUnitForCycle returns ErrCycleNotAssigned if no unit serves the cycle.
	GetUnitForCycle(ctx context.Context, cycleID string) (string, error)

	// GetUnitStatus returns ErrUnitNotFound if the unit has no status row.
	GetUnitStatus(ctx context.Context, unitID string) (*UnitStatus, error)

	// ListAssignments returns every cycle -> unit pair.
	ListAssignments(ctx context.Context) (map[string]string, error)

	// ListUnitStatuses returns every status row keyed by unit.
	ListUnitStatuses(ctx context.Context) (map[string]UnitStatus, error)
}

func matchesDuty(d *Duty, filter DutyFilter) bool {
	if filter.ServiceClass != "" && d.ServiceClass != filter.ServiceClass {
		return false
	}
	if len(filter.IDs) == 0 {
		return true
	}
	for _, id := range filter.IDs {
		if id == d.ID {
			return true
		}
	}
	return false
}

func matchesTrip(t *Trip, filter TripFilter) bool {
	if filter.Line != "" && t.Line != filter.Line {
		return false
	}
	if len(filter.Codes) == 0 {
		return true
	}
	for _, c := range filter.Codes {
		if c == t.Code {
			return true
		}
	}
	return false
}

// Store is a backend serving all three tables.
type Store interface {
	DutyRepository
	TripRepository
	UnitRepository
}

var (
	_ Store = (*InMemoryRepository)(nil)
	_ Store = (*PostgresRepository)(nil)
)
