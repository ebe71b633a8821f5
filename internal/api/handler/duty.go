package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/api/response"
	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/opclock"
)

// DutyHandler handles duty endpoints.
type DutyHandler struct {
	engine *engine.Service
}

// NewDutyHandler creates a new DutyHandler.
func NewDutyHandler(svc *engine.Service) *DutyHandler {
	return &DutyHandler{engine: svc}
}

// Board handles GET /v1/duties - live state of every duty of a service class.
func (h *DutyHandler) Board(w http.ResponseWriter, r *http.Request) {
	now, ok := atParam(w, r, h.engine)
	if !ok {
		return
	}

	board, err := h.engine.Board(r.Context(), r.URL.Query().Get("service"), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewBoard(board))
}

// GetDuty handles GET /v1/duties/{dutyId} - timeline, status and trips.
func (h *DutyHandler) GetDuty(w http.ResponseWriter, r *http.Request) {
	now, ok := atParam(w, r, h.engine)
	if !ok {
		return
	}

	view, err := h.engine.DutyView(r.Context(), chi.URLParam(r, "dutyId"), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewDuty(view))
}

// GetStatus handles GET /v1/duties/{dutyId}/status.
func (h *DutyHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	now, ok := atParam(w, r, h.engine)
	if !ok {
		return
	}

	view, err := h.engine.DutyView(r.Context(), chi.URLParam(r, "dutyId"), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.DutyStatusResponse{
		DutyID: view.Duty.ID,
		At:     opclock.FromMinutes(view.At),
		Status: models.NewDutyStatus(view.Status),
	})
}
