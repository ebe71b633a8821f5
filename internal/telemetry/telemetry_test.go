package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/railops/railops/internal/telemetry"
)

func TestInit_DisabledStillRegistersInstruments(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:  "railops-worker",
		Environment:  "test",
		OTLPEndpoint: "localhost:4317",
		Component:    "worker",
	})
	require.NoError(t, err)

	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	require.NotNil(t, provider.Instruments)
	assert.NotPanics(t, func() {
		provider.Instruments.RecordSnapshotLoad(ctx, time.Millisecond, 3, nil)
		provider.Instruments.RecordStatus(ctx, "AT_REST")
	})

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestResourceAttributes(t *testing.T) {
	attrs := telemetry.ResourceAttributes(telemetry.Config{
		ServiceName:    "railops-api",
		ServiceVersion: "1.4.0",
		Environment:    "production",
		Component:      "api",
		TimeZone:       "Europe/Madrid",
		ServiceClasses: []string{"weekday", "saturday"},
		RosterSource:   "postgres",
	})

	got := make(map[attribute.Key]string, len(attrs))
	for _, kv := range attrs {
		got[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "railops-api", got["service.name"])
	assert.Equal(t, "1.4.0", got["service.version"])
	assert.Equal(t, "api", got[telemetry.AttrComponent])
	assert.Equal(t, "Europe/Madrid", got[telemetry.AttrTimeZone])
	assert.Equal(t, "weekday,saturday", got[telemetry.AttrServiceClasses])
	assert.Equal(t, "postgres", got[telemetry.AttrRosterSource])
}

func TestResourceAttributes_OmitsUnsetRailopsKeys(t *testing.T) {
	attrs := telemetry.ResourceAttributes(telemetry.Config{ServiceName: "railops-api"})

	for _, kv := range attrs {
		assert.NotContains(t, string(kv.Key), "railops.")
	}
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestTracer_ReturnsGlobalTracer(t *testing.T) {
	assert.NotNil(t, telemetry.Tracer("test-tracer"))
}

func TestInstruments_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(ctx) }()

	inst, err := telemetry.NewInstruments(mp.Meter("railops-test"))
	require.NoError(t, err)

	inst.RecordSnapshotLoad(ctx, 20*time.Millisecond, 12, nil)
	inst.RecordSnapshotLoad(ctx, 5*time.Millisecond, 0, errors.New("boom"))
	inst.RecordStatus(ctx, "LIVE_TRIP")
	inst.RecordStatus(ctx, "AT_REST")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := make(map[string]bool)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	assert.True(t, names["railops.snapshot.load.duration"])
	assert.True(t, names["railops.snapshot.load.errors"])
	assert.True(t, names["railops.snapshot.duties"])
	assert.True(t, names["railops.status.resolutions"])
}

func TestInstruments_NilIsNoop(t *testing.T) {
	var inst *telemetry.Instruments
	assert.NotPanics(t, func() {
		inst.RecordSnapshotLoad(context.Background(), time.Second, 1, nil)
		inst.RecordStatus(context.Background(), "FINISHED")
	})
}
