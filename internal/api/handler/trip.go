package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/api/response"
	"github.com/railops/railops/internal/engine"
)

// TripHandler handles trip endpoints.
type TripHandler struct {
	engine *engine.Service
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(svc *engine.Service) *TripHandler {
	return &TripHandler{engine: svc}
}

// GetState handles GET /v1/trips/{tripCode}/state.
func (h *TripHandler) GetState(w http.ResponseWriter, r *http.Request) {
	now, ok := atParam(w, r, h.engine)
	if !ok {
		return
	}

	view, err := h.engine.TripState(r.Context(), chi.URLParam(r, "tripCode"), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewTripState(view))
}
