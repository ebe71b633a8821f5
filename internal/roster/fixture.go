package roster

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML layout of a roster snapshot file.
type Fixture struct {
	Duties []struct {
		ID           string `yaml:"id"`
		Service      string `yaml:"service"`
		Start        string `yaml:"start"`
		End          string `yaml:"end"`
		HomeLocation string `yaml:"home"`
		Trips        []struct {
			Code       string `yaml:"code"`
			Cycle      string `yaml:"cycle,omitempty"`
			Annotation string `yaml:"annotation,omitempty"`
		} `yaml:"trips"`
	} `yaml:"duties"`

	Trips []struct {
		Code                string `yaml:"code"`
		Line                string `yaml:"line"`
		Origin              string `yaml:"origin"`
		OriginPlatform      string `yaml:"origin_platform,omitempty"`
		Departure           string `yaml:"departure"`
		Destination         string `yaml:"destination"`
		DestinationPlatform string `yaml:"destination_platform,omitempty"`
		Arrival             string `yaml:"arrival"`
		Cycle               string `yaml:"cycle,omitempty"`
		Stops               []Stop `yaml:"stops,omitempty"`
	} `yaml:"trips"`

	// Assignments maps cycle -> unit.
	Assignments map[string]string `yaml:"assignments"`

	Units []struct {
		ID             string `yaml:"id"`
		OutOfService   bool   `yaml:"out_of_service"`
		NeedsPhotos    bool   `yaml:"needs_photos"`
		NeedsPaperwork bool   `yaml:"needs_paperwork"`
		NeedsCleaning  bool   `yaml:"needs_cleaning"`
	} `yaml:"units"`
}

// LoadFixtureFile reads a YAML roster snapshot into a new in-memory repository.
func LoadFixtureFile(path string) (*InMemoryRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	return LoadFixture(f)
}

// LoadFixture reads a YAML roster snapshot into a new in-memory repository.
func LoadFixture(r io.Reader) (*InMemoryRepository, error) {
	var fx Fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	repo := NewInMemoryRepository()

	for _, d := range fx.Duties {
		if d.ID == "" {
			return nil, fmt.Errorf("decode fixture: duty without id")
		}
		duty := &Duty{
			ID:           d.ID,
			ServiceClass: d.Service,
			Start:        d.Start,
			End:          d.End,
			HomeLocation: d.HomeLocation,
		}
		for _, t := range d.Trips {
			duty.Trips = append(duty.Trips, NewTripReference(t.Code, t.Cycle, t.Annotation))
		}
		repo.PutDuty(duty)
	}

	for _, t := range fx.Trips {
		repo.PutTrip(&Trip{
			Code:                t.Code,
			Line:                t.Line,
			Origin:              t.Origin,
			OriginPlatform:      t.OriginPlatform,
			Departure:           t.Departure,
			Destination:         t.Destination,
			DestinationPlatform: t.DestinationPlatform,
			Arrival:             t.Arrival,
			CycleID:             t.Cycle,
			Stops:               t.Stops,
		})
	}

	for cycle, unit := range fx.Assignments {
		repo.AssignUnit(cycle, unit)
	}

	for _, u := range fx.Units {
		repo.PutUnitStatus(UnitStatus{
			UnitID:         u.ID,
			OutOfService:   u.OutOfService,
			NeedsPhotos:    u.NeedsPhotos,
			NeedsPaperwork: u.NeedsPaperwork,
			NeedsCleaning:  u.NeedsCleaning,
		})
	}

	return repo, nil
}
