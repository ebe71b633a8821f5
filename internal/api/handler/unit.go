package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railops/railops/internal/api/models"
	"github.com/railops/railops/internal/api/response"
	"github.com/railops/railops/internal/engine"
)

// UnitHandler handles unit endpoints.
type UnitHandler struct {
	engine *engine.Service
}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler(svc *engine.Service) *UnitHandler {
	return &UnitHandler{engine: svc}
}

// GetContact handles GET /v1/units/{unitId}/contact.
func (h *UnitHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.UnitContact(r.Context(), chi.URLParam(r, "unitId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewUnitContact(view))
}
