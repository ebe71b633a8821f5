package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are the engine-level OpenTelemetry instruments.
type Instruments struct {
	snapshotLoadDuration metric.Float64Histogram
	snapshotLoadErrors   metric.Int64Counter
	snapshotDuties       metric.Int64Gauge
	statusResolutions    metric.Int64Counter
}

// NewInstruments registers the engine instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	loadDuration, err := meter.Float64Histogram(
		"railops.snapshot.load.duration",
		metric.WithDescription("Duration of roster snapshot loads"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create snapshot load histogram: %w", err)
	}

	loadErrors, err := meter.Int64Counter(
		"railops.snapshot.load.errors",
		metric.WithDescription("Failed roster snapshot loads"),
	)
	if err != nil {
		return nil, fmt.Errorf("create snapshot error counter: %w", err)
	}

	duties, err := meter.Int64Gauge(
		"railops.snapshot.duties",
		metric.WithDescription("Duties in the most recent snapshot"),
	)
	if err != nil {
		return nil, fmt.Errorf("create snapshot duties gauge: %w", err)
	}

	resolutions, err := meter.Int64Counter(
		"railops.status.resolutions",
		metric.WithDescription("Duty live-state resolutions by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("create status counter: %w", err)
	}

	return &Instruments{
		snapshotLoadDuration: loadDuration,
		snapshotLoadErrors:   loadErrors,
		snapshotDuties:       duties,
		statusResolutions:    resolutions,
	}, nil
}

// RecordSnapshotLoad records one snapshot load. duties is ignored when err
// is non-nil.
func (i *Instruments) RecordSnapshotLoad(ctx context.Context, elapsed time.Duration, duties int, err error) {
	if i == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		i.snapshotLoadErrors.Add(ctx, 1)
	} else {
		i.snapshotDuties.Record(ctx, int64(duties))
	}
	i.snapshotLoadDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordStatus counts one resolved duty status.
func (i *Instruments) RecordStatus(ctx context.Context, kind string) {
	if i == nil {
		return
	}
	i.statusResolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
