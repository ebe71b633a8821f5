package roster

import "sort"

// Snapshot is an immutable view of all source tables at one point in time.
// It is safe for concurrent use once built.
type Snapshot struct {
	duties      []Duty
	dutyIndex   map[string]int
	trips       map[string]Trip
	assignments map[string]string
	statuses    map[string]UnitStatus
}

// NewSnapshot copies the given records into a new snapshot. Duties are kept
// in ID order, which is the order proxy cycle lookups scan them in.
func NewSnapshot(duties []*Duty, trips []*Trip, assignments map[string]string, statuses map[string]UnitStatus) *Snapshot {
	s := &Snapshot{
		duties:      make([]Duty, 0, len(duties)),
		dutyIndex:   make(map[string]int, len(duties)),
		trips:       make(map[string]Trip, len(trips)),
		assignments: make(map[string]string, len(assignments)),
		statuses:    make(map[string]UnitStatus, len(statuses)),
	}

	for _, d := range duties {
		s.duties = append(s.duties, *copyDuty(d))
	}
	sort.SliceStable(s.duties, func(i, j int) bool { return s.duties[i].ID < s.duties[j].ID })
	for i, d := range s.duties {
		s.dutyIndex[d.ID] = i
	}

	for _, t := range trips {
		s.trips[t.Code] = *copyTrip(t)
	}
	for k, v := range assignments {
		s.assignments[k] = v
	}
	for k, v := range statuses {
		s.statuses[k] = v
	}

	return s
}

// Duty returns a duty by ID.
func (s *Snapshot) Duty(id string) (Duty, bool) {
	i, ok := s.dutyIndex[id]
	if !ok {
		return Duty{}, false
	}
	return s.duties[i], true
}

// Duties returns every duty in ID order.
func (s *Snapshot) Duties() []Duty {
	return append([]Duty(nil), s.duties...)
}

// DutiesInService returns the duties of one service class in ID order.
func (s *Snapshot) DutiesInService(serviceClass string) []Duty {
	var result []Duty
	for _, d := range s.duties {
		if d.ServiceClass == serviceClass {
			result = append(result, d)
		}
	}
	return result
}

// Trip returns a trip by code.
func (s *Snapshot) Trip(code string) (Trip, bool) {
	t, ok := s.trips[code]
	return t, ok
}

// UnitForCycle returns the unit assigned to a cycle.
func (s *Snapshot) UnitForCycle(cycleID string) (string, bool) {
	u, ok := s.assignments[cycleID]
	return u, ok
}

// UnitStatus returns the status flags of a unit.
func (s *Snapshot) UnitStatus(unitID string) (UnitStatus, bool) {
	st, ok := s.statuses[unitID]
	return st, ok
}

// Len returns the number of duties in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.duties)
}
