// Package handler provides HTTP handlers for the railops API.
package handler

import (
	"net/http"
	"time"

	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/api/response"
	"github.com/railops/railops/internal/engine"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	engine    *engine.Service
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, svc *engine.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		engine:    svc,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. The API is ready once a roster
// snapshot can be served; an open loader circuit with a stale snapshot is
// reported as degraded.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	_, err := h.engine.Snapshot(r.Context())
	snapshot := h.snapshotStatus()

	status := snapshot.Status
	code := http.StatusOK
	if err != nil {
		status = models.HealthStatusFail
		snapshot.Status = models.HealthStatusFail
		if snapshot.LastError == "" {
			snapshot.LastError = err.Error()
		}
		code = http.StatusServiceUnavailable
	}

	response.JSON(w, r, code, models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: map[string]interface{}{"snapshot": snapshot},
	})
}

func (h *OpsHandler) snapshotStatus() models.SnapshotStatus {
	health := h.engine.LoadHealth()

	status := models.HealthStatusOK
	if !health.IsHealthy() {
		status = models.HealthStatusDegraded
	}

	out := models.SnapshotStatus{
		Status:        status,
		CircuitState:  health.CircuitState.String(),
		LastSuccessAt: models.TimestampPtr(health.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(health.LastFailureAt),
		LastError:     health.LastError,
	}
	if loaded := h.engine.LoadedAt(); !loaded.IsZero() {
		out.LoadedAt = models.TimestampPtr(&loaded)
	}
	return out
}
