package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railops/railops/internal/api/handler"
	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/resilience"
	"github.com/railops/railops/internal/roster"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{
			name:   "no snapshot",
			err:    fmt.Errorf("%w: %w", engine.ErrNoSnapshot, errors.New("dial tcp: refused")),
			status: http.StatusServiceUnavailable,
			typ:    models.ProblemTypeUnavailable,
		},
		{
			name:   "circuit open",
			err:    fmt.Errorf("load roster: %w", resilience.ErrCircuitOpen),
			status: http.StatusServiceUnavailable,
			typ:    models.ProblemTypeUnavailable,
		},
		{
			name:   "duty not found",
			err:    fmt.Errorf("duty D9: %w", roster.ErrDutyNotFound),
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:   "trip not found",
			err:    fmt.Errorf("trip T9: %w", roster.ErrTripNotFound),
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:   "unit not found",
			err:    fmt.Errorf("unit 999.99: %w", roster.ErrUnitNotFound),
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:   "malformed duty",
			err:    fmt.Errorf("duty D3: end \"xx\": %w", engine.ErrInvalidDuty),
			status: http.StatusUnprocessableEntity,
			typ:    models.ProblemTypeInvalidDuty,
		},
		{
			name:   "anything else",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			typ:    models.ProblemTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.WriteError(rec, httptest.NewRequest(http.MethodGet, "/v1/duties/D1", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var p models.Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.status, p.Status)
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.WriteError(rec, httptest.NewRequest(http.MethodGet, "/v1/duties/D1", nil), errors.New("pgx: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}
