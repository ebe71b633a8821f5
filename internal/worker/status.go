package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/timeline"
)

// StatusJob recomputes the live board of every configured service class.
type StatusJob struct {
	config    StatusJobConfig
	logger    zerolog.Logger
	engine    *engine.Service
	collector *Collector

	// Metrics
	metrics *JobMetrics

	// last holds the most recent result.
	mu   sync.RWMutex
	last *RunResult
}

// JobMetrics tracks status job statistics.
type JobMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns    int64
	FailedRuns   int64
	Triggered    int64
	BoardsFailed int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// StatusJobOptions holds the dependencies of a StatusJob.
type StatusJobOptions struct {
	Config StatusJobConfig
	Logger zerolog.Logger
	Engine *engine.Service

	// Collector may be nil.
	Collector *Collector
}

// NewStatusJob creates a new status job.
func NewStatusJob(opts StatusJobOptions) *StatusJob {
	return &StatusJob{
		config:    opts.Config.withDefaults(),
		logger:    opts.Logger,
		engine:    opts.Engine,
		collector: opts.Collector,
		metrics:   &JobMetrics{},
	}
}

// BoardSummary condenses one service class board.
type BoardSummary struct {
	ServiceClass string                      `json:"service_class"`
	Duties       int                         `json:"duties"`
	Counts       map[timeline.StatusKind]int `json:"counts"`
	Invalid      int                         `json:"invalid"`

	// Unassigned counts live trips with no unit resolved.
	Unassigned int `json:"unassigned"`
}

// RunResult contains the result of a status run.
type RunResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// At is the operational minute the boards were computed for.
	At     int
	Boards []BoardSummary
	Errors []RunError
}

// RunError represents a service class that could not be computed.
type RunError struct {
	ServiceClass string `json:"service_class"`
	Error        string `json:"error"`
}

// Run computes every configured board at the engine's current minute.
func (j *StatusJob) Run(ctx context.Context) *RunResult {
	return j.RunAt(ctx, j.engine.NowMinutes())
}

// RunAt computes every configured board at operational minute now.
func (j *StatusJob) RunAt(ctx context.Context, now int) *RunResult {
	startTime := time.Now()
	result := &RunResult{StartTime: startTime, At: now}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	j.logger.Debug().
		Str("at", opclock.FromMinutes(now)).
		Strs("service_classes", j.config.ServiceClasses).
		Msg("starting status run")

	snap, err := j.engine.Snapshot(ctx)
	if err != nil {
		for _, class := range j.config.ServiceClasses {
			result.Errors = append(result.Errors, RunError{ServiceClass: class, Error: err.Error()})
		}
		return j.finish(result, now)
	}

	p := pool.NewWithResults[BoardSummary]().WithMaxGoroutines(j.config.Concurrency)
	for _, class := range j.config.ServiceClasses {
		p.Go(func() BoardSummary {
			return summarize(j.engine.BoardFrom(ctx, snap, class, now))
		})
	}

	for _, summary := range p.Wait() {
		result.Boards = append(result.Boards, summary)
		j.collector.observeBoard(summary)
	}

	return j.finish(result, now)
}

func (j *StatusJob) finish(result *RunResult, now int) *RunResult {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	snapshotAge := time.Duration(-1)
	if loaded := j.engine.LoadedAt(); !loaded.IsZero() {
		snapshotAge = result.EndTime.Sub(loaded)
	}
	j.collector.observeRun(result, snapshotAge)
	j.updateMetrics(result)

	event := j.logger.Info()
	if len(result.Errors) > 0 {
		event = j.logger.Warn().Int("failed", len(result.Errors)).Str("first_error", result.Errors[0].Error)
	}
	event.
		Dur("duration", result.Duration).
		Int("boards", len(result.Boards)).
		Str("at", opclock.FromMinutes(now)).
		Msg("status run completed")

	return result
}

// Trigger drops the cached snapshot and recomputes immediately.
func (j *StatusJob) Trigger(ctx context.Context) (*RunResult, error) {
	j.engine.Invalidate()

	j.metrics.mu.Lock()
	j.metrics.Triggered++
	j.metrics.mu.Unlock()

	result := j.Run(ctx)
	if len(result.Boards) == 0 && len(result.Errors) > 0 {
		return result, fmt.Errorf("status run failed for all %d service classes: %s", len(result.Errors), result.Errors[0].Error)
	}
	return result, nil
}

// Start runs the job immediately and then every Interval until ctx is done.
func (j *StatusJob) Start(ctx context.Context) {
	j.logger.Info().Dur("interval", j.config.Interval).Msg("status job started")

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("status job stopped")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

// LastResult returns the most recent run, or nil before the first one.
func (j *StatusJob) LastResult() *RunResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}

func summarize(b *engine.Board) BoardSummary {
	s := BoardSummary{
		ServiceClass: b.ServiceClass,
		Duties:       len(b.Entries),
		Counts:       make(map[timeline.StatusKind]int, len(b.Counts)),
	}
	for kind, n := range b.Counts {
		s.Counts[kind] = n
	}
	for _, e := range b.Entries {
		if e.Invalid {
			s.Invalid++
			continue
		}
		if e.Current != nil && e.Current.Unassigned() {
			s.Unassigned++
		}
	}
	return s
}

func (j *StatusJob) updateMetrics(result *RunResult) {
	j.mu.Lock()
	j.last = result
	j.mu.Unlock()

	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	if len(result.Errors) > 0 {
		j.metrics.FailedRuns++
	}
	j.metrics.BoardsFailed += int64(len(result.Errors))
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *StatusJob) GetMetrics() JobMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return JobMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		FailedRuns:      j.metrics.FailedRuns,
		Triggered:       j.metrics.Triggered,
		BoardsFailed:    j.metrics.BoardsFailed,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *StatusJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"failed_runs":       m.FailedRuns,
		"triggered_runs":    m.Triggered,
		"boards_failed":     m.BoardsFailed,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
