package roster

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of the duty, trip and
// unit repositories. It backs tests and YAML fixtures.
type InMemoryRepository struct {
	mu          sync.RWMutex
	duties      map[string]*Duty
	trips       map[string]*Trip
	assignments map[string]string
	statuses    map[string]UnitStatus
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		duties:      make(map[string]*Duty),
		trips:       make(map[string]*Trip),
		assignments: make(map[string]string),
		statuses:    make(map[string]UnitStatus),
	}
}

// PutDuty creates or replaces a duty.
func (r *InMemoryRepository) PutDuty(d *Duty) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.duties[d.ID] = copyDuty(d)
}

// PutTrip creates or replaces a trip.
func (r *InMemoryRepository) PutTrip(t *Trip) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trips[t.Code] = copyTrip(t)
}

// AssignUnit upserts the unit serving a cycle.
func (r *InMemoryRepository) AssignUnit(cycleID, unitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assignments[cycleID] = unitID
}

// UnassignCycle removes a cycle assignment.
func (r *InMemoryRepository) UnassignCycle(cycleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.assignments, cycleID)
}

// PutUnitStatus creates or replaces a unit status row.
func (r *InMemoryRepository) PutUnitStatus(s UnitStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses[s.UnitID] = s
}

// GetDuty retrieves a duty by ID.
func (r *InMemoryRepository) GetDuty(_ context.Context, id string) (*Duty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.duties[id]
	if !ok {
		return nil, ErrDutyNotFound
	}
	return copyDuty(d), nil
}

// FindDuties returns the duties matching filter, ordered by ID.
func (r *InMemoryRepository) FindDuties(_ context.Context, filter DutyFilter) ([]*Duty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var duties []*Duty
	for _, d := range r.duties {
		if matchesDuty(d, filter) {
			duties = append(duties, copyDuty(d))
		}
	}
	sort.Slice(duties, func(i, j int) bool { return duties[i].ID < duties[j].ID })
	return duties, nil
}

// GetTrip retrieves a trip by code.
func (r *InMemoryRepository) GetTrip(_ context.Context, code string) (*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[code]
	if !ok {
		return nil, ErrTripNotFound
	}
	return copyTrip(t), nil
}

// FindTrips returns the trips matching filter, ordered by code.
func (r *InMemoryRepository) FindTrips(_ context.Context, filter TripFilter) ([]*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trips []*Trip
	for _, t := range r.trips {
		if matchesTrip(t, filter) {
			trips = append(trips, copyTrip(t))
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].Code < trips[j].Code })
	return trips, nil
}

// GetUnitForCycle returns the unit serving a cycle.
func (r *InMemoryRepository) GetUnitForCycle(_ context.Context, cycleID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unit, ok := r.assignments[cycleID]
	if !ok {
		return "", ErrCycleNotAssigned
	}
	return unit, nil
}

// GetUnitStatus returns the status flags of a unit.
func (r *InMemoryRepository) GetUnitStatus(_ context.Context, unitID string) (*UnitStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[unitID]
	if !ok {
		return nil, ErrUnitNotFound
	}
	return &s, nil
}

// ListAssignments returns a copy of the assignment table.
func (r *InMemoryRepository) ListAssignments(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]string, len(r.assignments))
	for k, v := range r.assignments {
		result[k] = v
	}
	return result, nil
}

// ListUnitStatuses returns a copy of the status table.
func (r *InMemoryRepository) ListUnitStatuses(_ context.Context) (map[string]UnitStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]UnitStatus, len(r.statuses))
	for k, v := range r.statuses {
		result[k] = v
	}
	return result, nil
}

func copyDuty(d *Duty) *Duty {
	cpy := *d
	cpy.Trips = append([]TripReference(nil), d.Trips...)
	return &cpy
}

func copyTrip(t *Trip) *Trip {
	cpy := *t
	cpy.Stops = append([]Stop(nil), t.Stops...)
	return &cpy
}

// Ensure InMemoryRepository implements the repository interfaces.
var (
	_ DutyRepository = (*InMemoryRepository)(nil)
	_ TripRepository = (*InMemoryRepository)(nil)
	_ UnitRepository = (*InMemoryRepository)(nil)
)
