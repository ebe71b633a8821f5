package models

// Stop is an intermediate call of a trip.
type Stop struct {
	Name     string `json:"name"`
	Time     string `json:"time"`
	Platform string `json:"platform,omitempty"`
}

// UnitStatus holds the maintenance flags of a unit.
type UnitStatus struct {
	OutOfService   bool `json:"outOfService"`
	NeedsPhotos    bool `json:"needsPhotos"`
	NeedsPaperwork bool `json:"needsPaperwork"`
	NeedsCleaning  bool `json:"needsCleaning"`

	// PendingWork is set when photos, paperwork or cleaning are due.
	PendingWork bool `json:"pendingWork"`
}

// TripRef is one resolved trip reference of a duty.
type TripRef struct {
	Position    int    `json:"position"`
	Code        string `json:"code"`
	Proxy       bool   `json:"proxy"`
	Known       bool   `json:"known"`
	TripCode    string `json:"tripCode,omitempty"`
	Line        string `json:"line,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`

	OriginPlatform      string `json:"originPlatform,omitempty"`
	DestinationPlatform string `json:"destinationPlatform,omitempty"`

	Departure string      `json:"departure,omitempty"`
	Arrival   string      `json:"arrival,omitempty"`
	CycleID   string      `json:"cycleId,omitempty"`
	UnitID    string      `json:"unitId,omitempty"`
	Contact   string      `json:"contact,omitempty"`
	Status    *UnitStatus `json:"unitStatus,omitempty"`
	Stops     []Stop      `json:"stops,omitempty"`
}

// Segment is one interval of a duty timeline.
type Segment struct {
	Kind     string `json:"kind"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int    `json:"durationMinutes"`

	Location string `json:"location,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Rest     string `json:"rest,omitempty"`

	TripIndex *int   `json:"tripIndex,omitempty"`
	TripCode  string `json:"tripCode,omitempty"`
	Line      string `json:"line,omitempty"`
	CycleID   string `json:"cycleId,omitempty"`
	UnitID    string `json:"unitId,omitempty"`
}

// DutyStatus is the live state of a duty.
type DutyStatus struct {
	Kind             string `json:"kind"`
	Label            string `json:"label"`
	RemainingMinutes *int   `json:"remainingMinutes,omitempty"`
	Target           string `json:"target,omitempty"`
	TripCode         string `json:"tripCode,omitempty"`
	Location         string `json:"location,omitempty"`
	Rest             string `json:"rest,omitempty"`
}

// Duty is the full view of one duty.
type Duty struct {
	ID           string     `json:"id"`
	ServiceClass string     `json:"serviceClass"`
	Start        string     `json:"start"`
	End          string     `json:"end"`
	HomeLocation string     `json:"homeLocation"`
	At           string     `json:"at"`
	Status       DutyStatus `json:"status"`
	Trips        []TripRef  `json:"trips"`
	Timeline     []Segment  `json:"timeline"`
}

// DutyStatusResponse is the body of the duty status endpoint.
type DutyStatusResponse struct {
	DutyID string     `json:"dutyId"`
	At     string     `json:"at"`
	Status DutyStatus `json:"status"`
}

// BoardEntry is one duty on a board.
type BoardEntry struct {
	DutyID       string      `json:"dutyId"`
	ServiceClass string      `json:"serviceClass"`
	Start        string      `json:"start"`
	End          string      `json:"end"`
	HomeLocation string      `json:"homeLocation"`
	Invalid      bool        `json:"invalid,omitempty"`
	Status       *DutyStatus `json:"status,omitempty"`
	Current      *TripRef    `json:"current,omitempty"`
}

// Board is the live state of a service class.
type Board struct {
	ServiceClass string         `json:"serviceClass,omitempty"`
	At           string         `json:"at"`
	Counts       map[string]int `json:"counts"`
	Items        []BoardEntry   `json:"items"`
}

// TripState is the interval state of one trip.
type TripState struct {
	At    string  `json:"at"`
	State string  `json:"state"`
	Trip  TripRef `json:"trip"`
}

// UnitContact is the contact channel and maintenance state of a unit.
type UnitContact struct {
	UnitID  string      `json:"unitId"`
	Contact string      `json:"contact,omitempty"`
	Status  *UnitStatus `json:"status,omitempty"`
}
