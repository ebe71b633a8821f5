// Package roster holds the source records of the operational engine: duties,
// trips, cycle assignments and unit status, plus the stores that read them.
package roster

import "errors"

// Repository errors.
var (
	ErrDutyNotFound     = errors.New("duty not found")
	ErrTripNotFound     = errors.New("trip not found")
	ErrCycleNotAssigned = errors.New("cycle has no unit assigned")
	ErrUnitNotFound     = errors.New("unit not found")
)

// Duty is a person's scheduled work block.
type Duty struct {
	// ID is the duty identifier as printed on the roster.
	ID string

	// ServiceClass groups duties that run on the same calendar (e.g. "weekday").
	ServiceClass string

	// Start and End are wall-clock "HH:MM" strings.
	Start string
	End   string

	// HomeLocation is the station code where the duty begins.
	HomeLocation string

	// Trips are the duty's trip references in roster order.
	Trips []TripReference
}

// Stop is an intermediate call of a trip.
type Stop struct {
	Name     string `yaml:"name" json:"name"`
	Time     string `yaml:"time" json:"time"`
	Platform string `yaml:"platform,omitempty" json:"platform,omitempty"`
}

// Trip is a scheduled train movement (a "circulation").
type Trip struct {
	Code                string
	Line                string
	Origin              string
	OriginPlatform      string
	Departure           string
	Destination         string
	DestinationPlatform string
	Arrival             string

	// CycleID is the cycle the timetable assigns by default, if any.
	CycleID string

	Stops []Stop
}

// UnitStatus holds the maintenance flags of a physical unit.
type UnitStatus struct {
	UnitID         string
	OutOfService   bool
	NeedsPhotos    bool
	NeedsPaperwork bool
	NeedsCleaning  bool
}

// HasPendingWork reports whether any maintenance flag other than
// out-of-service is set.
func (s UnitStatus) HasPendingWork() bool {
	return s.NeedsPhotos || s.NeedsPaperwork || s.NeedsCleaning
}

// EnrichedTripReference is a trip reference merged with everything the
// resolver could find about it. Missing pieces are left as zero values.
type EnrichedTripReference struct {
	Ref  TripReference
	Link Link

	// Position is the index of Ref in the duty's trip list.
	Position int

	// Trip is nil when the referenced trip is not in the timetable.
	Trip *Trip

	// TripCode is the real trip code; for proxies this differs from Ref.Code.
	TripCode string

	Line        string
	Origin      string
	Destination string
	Departure   string
	Arrival     string

	CycleID string
	UnitID  string
	Contact string

	// Status is nil when the unit is unknown or has no status row.
	Status *UnitStatus
}

// IsProxy reports whether the reference rides another trip.
func (e EnrichedTripReference) IsProxy() bool {
	return e.Link.Kind == LinkProxy
}

// HasTrip reports whether trip details were found.
func (e EnrichedTripReference) HasTrip() bool {
	return e.Trip != nil
}

// Unassigned reports whether no unit could be resolved.
func (e EnrichedTripReference) Unassigned() bool {
	return e.UnitID == ""
}
