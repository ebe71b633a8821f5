package worker

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/railops/railops/internal/timeline"
)

var statusKinds = []timeline.StatusKind{
	timeline.StatusNotStarted,
	timeline.StatusLiveTrip,
	timeline.StatusAtRest,
	timeline.StatusFinished,
}

// Collector holds the worker's Prometheus metrics on a private registry.
type Collector struct {
	reg *prometheus.Registry

	Duties        *prometheus.GaugeVec // service_class, status
	InvalidDuties *prometheus.GaugeVec // service_class
	Unassigned    *prometheus.GaugeVec // service_class: live trips without a unit

	Runs        *prometheus.CounterVec // result: ok|error
	RunDuration prometheus.Histogram

	SnapshotAge     prometheus.Gauge
	RefreshInterval prometheus.Gauge
}

// NewCollector creates and registers the worker metrics.
func NewCollector(refreshInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Duties: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "railops_duties",
			Help: "Duties by service class and live status.",
		}, []string{"service_class", "status"}),
		InvalidDuties: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "railops_invalid_duties",
			Help: "Duties without a start or end time.",
		}, []string{"service_class"}),
		Unassigned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "railops_live_trips_unassigned",
			Help: "Trips being ridden with no unit resolved.",
		}, []string{"service_class"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railops_status_runs_total",
			Help: "Status recompute runs by result.",
		}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "railops_status_run_duration_seconds",
			Help:    "Duration of a status recompute run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railops_snapshot_age_seconds",
			Help: "Age of the roster snapshot used by the last run.",
		}),
		RefreshInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railops_refresh_interval_seconds",
			Help: "Status recompute interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.Duties, c.InvalidDuties, c.Unassigned,
		c.Runs, c.RunDuration,
		c.SnapshotAge, c.RefreshInterval,
	)

	c.RefreshInterval.Set(refreshInterval.Seconds())

	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr.
func (c *Collector) Serve(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	logger.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}

// observeBoard sets the gauges of one service class. Every status label is
// written so that classes emptied by a roster change drop to zero.
func (c *Collector) observeBoard(b BoardSummary) {
	if c == nil {
		return
	}
	for _, kind := range statusKinds {
		c.Duties.WithLabelValues(b.ServiceClass, string(kind)).Set(float64(b.Counts[kind]))
	}
	c.InvalidDuties.WithLabelValues(b.ServiceClass).Set(float64(b.Invalid))
	c.Unassigned.WithLabelValues(b.ServiceClass).Set(float64(b.Unassigned))
}

func (c *Collector) observeRun(r *RunResult, snapshotAge time.Duration) {
	if c == nil {
		return
	}
	result := "ok"
	if len(r.Errors) > 0 {
		result = "error"
	}
	c.Runs.WithLabelValues(result).Inc()
	c.RunDuration.Observe(r.Duration.Seconds())
	if snapshotAge >= 0 {
		c.SnapshotAge.Set(snapshotAge.Seconds())
	}
}
