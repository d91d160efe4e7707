package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-warung/internal/common"
)

// Handler exposes customer-facing order reads.
type Handler struct {
	Repo Repo
}

// Get returns one order by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order repo not configured", nil)
		return
	}
	id := chi.URLParam(r, "orderId")
	o, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// AdminHandler exposes the staff order views and status transitions.
type AdminHandler struct {
	Repo Repo
}

// List returns recent orders, optionally filtered with ?status=new|resolved.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order repo not configured", nil)
		return
	}
	var statusFilter *Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		s := Status(raw)
		if !s.Valid() {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown status filter", nil)
			return
		}
		statusFilter = &s
	}
	orders, err := h.Repo.List(r.Context(), statusFilter, 100)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": orders})
}

type patchStatusInput struct {
	Status Status `json:"status"`
}

// PatchStatus applies the single allowed transition, new to resolved.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order repo not configured", nil)
		return
	}
	id := chi.URLParam(r, "orderId")
	var in patchStatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if in.Status != StatusResolved {
		common.JSONError(w, http.StatusBadRequest, "INVALID_STATE", "orders can only be marked resolved", nil)
		return
	}
	existing, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order lookup failed", nil)
		return
	}
	if existing.Status != StatusNew {
		common.JSONError(w, http.StatusBadRequest, "INVALID_STATE", "only new orders can be resolved", nil)
		return
	}
	if err := h.Repo.UpdateStatus(r.Context(), id, StatusResolved); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update order", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": StatusResolved}})
}
