// Package engine ties the roster stores, the resolver and the timeline
// together into the read operations the API, worker and CLI serve.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/resilience"
	"github.com/railops/railops/internal/roster"
	"github.com/railops/railops/internal/telemetry"
)

// Service errors.
var (
	ErrInvalidDuty = errors.New("duty has no valid start or end time")
	ErrNoSnapshot  = errors.New("no roster snapshot available")
)

const tracerName = "github.com/railops/railops/internal/engine"

// ServiceConfig holds configuration for the engine service.
type ServiceConfig struct {
	Duties roster.DutyRepository
	Trips  roster.TripRepository
	Units  roster.UnitRepository

	Logger zerolog.Logger

	// CacheTTL is how long a loaded snapshot is served before reloading.
	// Default: 1 minute
	CacheTTL time.Duration

	// Loader wraps store reads. If nil, one is built from
	// resilience.DefaultLoaderConfig.
	Loader *resilience.Loader[*roster.Snapshot]

	// Instruments may be nil.
	Instruments *telemetry.Instruments

	// Location is the zone the host clock is read in. Default: time.Local
	Location *time.Location

	// Now returns the host clock. Default: time.Now
	Now func() time.Time
}

// Service serves duty views and boards from a cached roster snapshot.
// It is safe for concurrent use.
type Service struct {
	duties roster.DutyRepository
	trips  roster.TripRepository
	units  roster.UnitRepository

	logger      zerolog.Logger
	cacheTTL    time.Duration
	loader      *resilience.Loader[*roster.Snapshot]
	instruments *telemetry.Instruments
	tracer      trace.Tracer
	location    *time.Location
	now         func() time.Time

	reloads singleflight.Group

	mu          sync.RWMutex
	snapshot    *roster.Snapshot
	loadedAt    time.Time
	cacheExpiry time.Time
}

// NewService creates a new engine service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Minute
	}

	loader := cfg.Loader
	if loader == nil {
		lc := resilience.DefaultLoaderConfig("roster-snapshot")
		lc.Logger = cfg.Logger
		lc.Permanent = isNotFound
		loader = resilience.NewLoader[*roster.Snapshot](lc)
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		duties:      cfg.Duties,
		trips:       cfg.Trips,
		units:       cfg.Units,
		logger:      cfg.Logger,
		cacheTTL:    cacheTTL,
		loader:      loader,
		instruments: cfg.Instruments,
		tracer:      telemetry.Tracer(tracerName),
		location:    location,
		now:         now,
	}
}

// NowMinutes returns the host clock as operational minutes in the
// configured zone.
func (s *Service) NowMinutes() int {
	return opclock.FromTime(s.now().In(s.location))
}

// LoadHealth reports the state of the snapshot loader.
func (s *Service) LoadHealth() resilience.Health {
	return s.loader.Health()
}

// LoadedAt returns when the current snapshot was loaded, or the zero time.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Snapshot returns the cached snapshot, reloading it when it has expired.
// Concurrent callers that find it expired share a single reload. When a
// reload fails and an older snapshot exists, the older one is served.
func (s *Service) Snapshot(ctx context.Context) (*roster.Snapshot, error) {
	snap, fresh := s.cached()
	if fresh {
		return snap, nil
	}

	v, err, _ := s.reloads.Do("snapshot", func() (any, error) {
		if current, fresh := s.cached(); fresh {
			return current, nil
		}
		return s.Refresh(ctx)
	})
	if err == nil {
		return v.(*roster.Snapshot), nil
	}
	if snap != nil {
		s.logger.Warn().Err(err).Time("loaded_at", s.LoadedAt()).Msg("snapshot reload failed, serving stale snapshot")
		return snap, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoSnapshot, err)
}

// cached returns the current snapshot and whether it has not yet expired.
func (s *Service) cached() (*roster.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.snapshot != nil && s.now().Before(s.cacheExpiry)
}

// Refresh loads a new snapshot from the stores and makes it current.
func (s *Service) Refresh(ctx context.Context) (*roster.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "engine.Refresh")
	defer span.End()

	started := time.Now()
	snap, err := s.loader.Load(ctx, s.load)
	elapsed := time.Since(started)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot load failed")
		s.instruments.RecordSnapshotLoad(ctx, elapsed, 0, err)
		return nil, err
	}

	s.instruments.RecordSnapshotLoad(ctx, elapsed, snap.Len(), nil)
	span.SetAttributes(attribute.Int("railops.duties", snap.Len()))

	now := s.now()
	s.mu.Lock()
	s.snapshot = snap
	s.loadedAt = now
	s.cacheExpiry = now.Add(s.cacheTTL)
	s.mu.Unlock()

	s.logger.Debug().Int("duties", snap.Len()).Dur("elapsed", elapsed).Msg("snapshot loaded")
	return snap, nil
}

// Invalidate expires the cached snapshot so the next read reloads it.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheExpiry = time.Time{}
}

// load reads the four source tables concurrently.
func (s *Service) load(ctx context.Context) (*roster.Snapshot, error) {
	var (
		duties      []*roster.Duty
		trips       []*roster.Trip
		assignments map[string]string
		statuses    map[string]roster.UnitStatus
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		duties, err = s.duties.FindDuties(ctx, roster.DutyFilter{})
		if err != nil {
			return fmt.Errorf("load duties: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		trips, err = s.trips.FindTrips(ctx, roster.TripFilter{})
		if err != nil {
			return fmt.Errorf("load trips: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		assignments, err = s.units.ListAssignments(ctx)
		if err != nil {
			return fmt.Errorf("load assignments: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		statuses, err = s.units.ListUnitStatuses(ctx)
		if err != nil {
			return fmt.Errorf("load unit status: %w", err)
		}
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}

	return roster.NewSnapshot(duties, trips, assignments, statuses), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, roster.ErrDutyNotFound) ||
		errors.Is(err, roster.ErrTripNotFound) ||
		errors.Is(err, roster.ErrCycleNotAssigned) ||
		errors.Is(err, roster.ErrUnitNotFound)
}
