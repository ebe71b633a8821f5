package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/timeline"
	"github.com/railops/railops/internal/worker"
)

func TestDefaultStatusJobConfig(t *testing.T) {
	cfg := worker.DefaultStatusJobConfig()

	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, []string{"weekday", "friday", "saturday", "sunday"}, cfg.ServiceClasses)
}

func newJob(t *testing.T, classes ...string) (*worker.StatusJob, *worker.Collector, *store) {
	t.Helper()
	svc, s := newEngine(t)
	collector := worker.NewCollector(time.Minute)
	job := worker.NewStatusJob(worker.StatusJobOptions{
		Config:    worker.StatusJobConfig{ServiceClasses: classes},
		Logger:    zerolog.Nop(),
		Engine:    svc,
		Collector: collector,
	})
	return job, collector, s
}

func TestStatusJob_RunAt(t *testing.T) {
	job, collector, s := newJob(t, "weekday", "saturday")

	at, ok := opclock.Parse("06:45")
	require.True(t, ok)
	result := job.RunAt(context.Background(), at)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Boards, 2)

	var weekday worker.BoardSummary
	for _, b := range result.Boards {
		if b.ServiceClass == "weekday" {
			weekday = b
		}
	}
	assert.Equal(t, 3, weekday.Duties)
	assert.Equal(t, 1, weekday.Invalid)
	assert.Equal(t, 2, weekday.Counts[timeline.StatusLiveTrip])
	assert.Equal(t, 1, weekday.Unassigned, "T60 runs on a cycle with no unit")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.Duties.WithLabelValues("weekday", "LIVE_TRIP")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.Duties.WithLabelValues("weekday", "FINISHED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Duties.WithLabelValues("saturday", "NOT_STARTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.InvalidDuties.WithLabelValues("weekday")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Unassigned.WithLabelValues("weekday")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Runs.WithLabelValues("ok")))
	assert.Equal(t, 60.0, testutil.ToFloat64(collector.RefreshInterval))

	assert.Same(t, result, job.LastResult())
	assert.Equal(t, int32(1), s.loads.Load(), "both classes are built from one snapshot")
}

func TestStatusJob_Run_UsesEngineClock(t *testing.T) {
	job, _, _ := newJob(t, "weekday")

	result := job.Run(context.Background())

	assert.Equal(t, "06:45", opclock.FromMinutes(result.At))
}

func TestStatusJob_Run_StoreDown(t *testing.T) {
	job, collector, s := newJob(t, "weekday")
	s.failing.Store(true)

	result := job.Run(context.Background())

	assert.Empty(t, result.Boards)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "weekday", result.Errors[0].ServiceClass)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Runs.WithLabelValues("error")))

	m := job.GetMetrics()
	assert.Equal(t, int64(1), m.TotalRuns)
	assert.Equal(t, int64(1), m.FailedRuns)
	assert.Equal(t, int64(1), m.BoardsFailed)
}

func TestStatusJob_Trigger_ReloadsSnapshot(t *testing.T) {
	job, _, s := newJob(t, "weekday")

	job.Run(context.Background())
	job.Run(context.Background())
	assert.Equal(t, int32(1), s.loads.Load(), "the cached snapshot is reused between runs")

	_, err := job.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), s.loads.Load())
	assert.Equal(t, int64(1), job.GetMetrics().Triggered)
}

func TestStatusJob_Trigger_FailsWhenNothingComputed(t *testing.T) {
	job, _, s := newJob(t, "weekday")
	s.failing.Store(true)

	_, err := job.Trigger(context.Background())
	assert.Error(t, err)
}

func TestStatusJob_Start_StopsOnCancel(t *testing.T) {
	svc, _ := newEngine(t)
	job := worker.NewStatusJob(worker.StatusJobOptions{
		Config: worker.StatusJobConfig{ServiceClasses: []string{"weekday"}, Interval: 10 * time.Millisecond},
		Logger: zerolog.Nop(),
		Engine: svc,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return job.GetMetrics().TotalRuns >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestStatusJob_MetricsSnapshot(t *testing.T) {
	job, _, _ := newJob(t, "weekday")
	job.Run(context.Background())

	snap := job.MetricsSnapshot()
	assert.Equal(t, int64(1), snap["total_runs"])
	assert.Equal(t, int64(0), snap["failed_runs"])
	assert.Contains(t, snap, "last_run_duration")
}
