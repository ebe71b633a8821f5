package worker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/worker"
)

func getHealth(t *testing.T, h http.Handler) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthHandler_ReportsLastRun(t *testing.T) {
	svc, _ := newEngine(t)
	job := worker.NewStatusJob(worker.StatusJobOptions{
		Config: worker.StatusJobConfig{ServiceClasses: []string{"weekday"}},
		Logger: zerolog.Nop(),
		Engine: svc,
	})
	h := worker.HealthHandler("1.2.3", svc, job)

	code, body := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "healthy", body["loader"])
	assert.NotContains(t, body, "last_run")

	at, ok := opclock.Parse("06:45")
	require.True(t, ok)
	job.RunAt(context.Background(), at)

	code, body = getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "last_run")

	last := body["last_run"].(map[string]interface{})
	assert.Equal(t, "06:45", last["at"])
	boards := last["boards"].([]interface{})
	require.Len(t, boards, 1)
	board := boards[0].(map[string]interface{})
	assert.Equal(t, "weekday", board["service_class"])
	assert.Equal(t, 3.0, board["duties"])
	assert.Equal(t, 1.0, board["unassigned"])
}

func TestHealthHandler_UnavailableWhenCircuitOpen(t *testing.T) {
	svc, s := newEngine(t)
	job := worker.NewStatusJob(worker.StatusJobOptions{
		Config: worker.StatusJobConfig{ServiceClasses: []string{"weekday"}},
		Logger: zerolog.Nop(),
		Engine: svc,
	})
	s.failing.Store(true)

	for i := 0; i < 3; i++ {
		job.Run(context.Background())
	}

	code, body := getHealth(t, worker.HealthHandler("dev", svc, job))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["loader"])

	last := body["last_run"].(map[string]interface{})
	errs := last["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Equal(t, "weekday", errs[0].(map[string]interface{})["service_class"])
}
