package handler

import (
	"errors"
	"net/http"

	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/api/response"
	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/opclock"
	"github.com/railops/railops/internal/resilience"
	"github.com/railops/railops/internal/roster"
)

// atParam reads the "at" query parameter as operational minutes, defaulting
// to the engine's clock. It writes a 400 and returns false when the value is
// not HH:MM.
func atParam(w http.ResponseWriter, r *http.Request, svc *engine.Service) (int, bool) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return svc.NowMinutes(), true
	}

	now, ok := opclock.Parse(raw)
	if !ok {
		response.BadRequest(w, r, "invalid query parameter", []models.FieldError{
			{Field: "at", Message: "must be a time of day as HH:MM", Code: "INVALID_TIME"},
		})
		return 0, false
	}
	return now, true
}

// writeError maps engine and store errors to problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrNoSnapshot), errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "roster data is temporarily unavailable")
	case errors.Is(err, roster.ErrDutyNotFound),
		errors.Is(err, roster.ErrTripNotFound),
		errors.Is(err, roster.ErrUnitNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, engine.ErrInvalidDuty):
		response.Unprocessable(w, r, err.Error())
	default:
		response.InternalError(w, r, "unexpected error")
	}
}
