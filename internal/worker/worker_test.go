package worker_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/resilience"
	"github.com/railops/railops/internal/roster"
)

const rosterYAML = `
duties:
  - id: "D1"
    service: weekday
    start: "05:00"
    end: "13:00"
    home: PC
    trips:
      - code: "T42"
        cycle: C7
  - id: "D2"
    service: weekday
    start: "05:30"
    end: "13:30"
    home: PC
    trips:
      - code: "T60"
  - id: "D3"
    service: weekday
    start: "06:00"
    home: PC
  - id: "S1"
    service: saturday
    start: "07:00"
    end: "15:00"
    home: RB
trips:
  - code: "T42"
    line: S1
    origin: PC
    departure: "06:00"
    destination: RB
    arrival: "07:30"
  - code: "T60"
    line: L7
    origin: PC
    departure: "06:30"
    destination: TB
    arrival: "07:00"
    cycle: C8
assignments:
  C7: "113.07"
`

// store counts duty reads and can be made to fail.
type store struct {
	*roster.InMemoryRepository
	failing atomic.Bool
	loads   atomic.Int32
}

func (s *store) FindDuties(ctx context.Context, f roster.DutyFilter) ([]*roster.Duty, error) {
	s.loads.Add(1)
	if s.failing.Load() {
		return nil, errors.New("connection refused")
	}
	return s.InMemoryRepository.FindDuties(ctx, f)
}

func newEngine(t *testing.T) (*engine.Service, *store) {
	t.Helper()
	mem, err := roster.LoadFixture(strings.NewReader(rosterYAML))
	require.NoError(t, err)
	s := &store{InMemoryRepository: mem}

	lc := resilience.DefaultLoaderConfig("test")
	lc.MaxRetries = 0
	lc.Logger = zerolog.Nop()

	svc := engine.NewService(engine.ServiceConfig{
		Duties:   s,
		Trips:    s,
		Units:    s,
		Logger:   zerolog.Nop(),
		CacheTTL: time.Hour,
		Loader:   resilience.NewLoader[*roster.Snapshot](lc),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 3, 2, 6, 45, 0, 0, time.UTC) },
	})
	return svc, s
}
