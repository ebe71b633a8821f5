package worker

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/opclock"
)

// lastRun is the health view of the most recent status run.
type lastRun struct {
	At       string         `json:"at"`
	Finished string         `json:"finished_at"`
	Boards   []BoardSummary `json:"boards"`
	Errors   []RunError     `json:"errors,omitempty"`
}

// HealthHandler serves the worker health document. It answers 503 while the
// snapshot loader circuit is open.
func HealthHandler(version string, svc *engine.Service, job *StatusJob) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		loader := svc.LoadHealth()

		status := http.StatusOK
		if loader.IsUnhealthy() {
			status = http.StatusServiceUnavailable
		}

		body := map[string]interface{}{
			"version": version,
			"loader":  loader.Status(),
			"job":     job.MetricsSnapshot(),
		}
		if last := job.LastResult(); last != nil {
			body["last_run"] = lastRun{
				At:       opclock.FromMinutes(last.At),
				Finished: last.EndTime.UTC().Format(time.RFC3339),
				Boards:   last.Boards,
				Errors:   last.Errors,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}
