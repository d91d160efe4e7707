package menu

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-warung/internal/common"
)

// Handler exposes the public menu read endpoints.
type Handler struct {
	Svc *Service
}

// List returns the full menu.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "menu service not configured", nil)
		return
	}
	items, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load menu", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// Get returns a single menu item by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "menu service not configured", nil)
		return
	}
	id := chi.URLParam(r, "itemId")
	item, err := h.Svc.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "menu item not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load menu item", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": item})
}
