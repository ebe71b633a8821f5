package worker_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railops/railops/internal/worker"
)

func TestDispatcher_Handle(t *testing.T) {
	job, _, s := newJob(t, "weekday")
	d := worker.NewDispatcher(job, zerolog.Nop())
	ctx := context.Background()

	msg, err := d.Handle(ctx, []byte(`{"job_type":"snapshot_changed","source":"duties"}`))
	require.NoError(t, err)
	assert.Equal(t, worker.JobSnapshotChanged, msg.JobType)
	assert.Equal(t, "duties", msg.Source)
	assert.Equal(t, int32(1), s.loads.Load())
	assert.Equal(t, int64(1), job.GetMetrics().Triggered)

	_, err = d.Handle(ctx, []byte(`{"job_type":"health_check"}`))
	assert.NoError(t, err)
}

func TestDispatcher_Handle_Errors(t *testing.T) {
	job, _, s := newJob(t, "weekday")
	d := worker.NewDispatcher(job, zerolog.Nop())
	ctx := context.Background()

	msg, err := d.Handle(ctx, []byte(`{"job_type":"provider_refresh"}`))
	assert.ErrorIs(t, err, worker.ErrUnknownJob)
	assert.Equal(t, "provider_refresh", msg.JobType)

	_, err = d.Handle(ctx, []byte(`not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, worker.ErrUnknownJob)

	s.failing.Store(true)
	_, err = d.Handle(ctx, []byte(`{"job_type":"snapshot_changed"}`))
	assert.Error(t, err)
}

func TestDispatcher_HealthCheck_CircuitOpen(t *testing.T) {
	job, _, s := newJob(t, "weekday")
	d := worker.NewDispatcher(job, zerolog.Nop())
	ctx := context.Background()
	s.failing.Store(true)

	for i := 0; i < 3; i++ {
		job.Run(ctx)
	}

	_, err := d.Handle(ctx, []byte(`{"job_type":"health_check"}`))
	assert.Error(t, err)
}
