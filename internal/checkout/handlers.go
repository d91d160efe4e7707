package checkout

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-warung/internal/common"
	"github.com/noah-isme/backend-warung/internal/pricing"
)

// Handler exposes the quote and checkout endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type quoteInput struct {
	Lines []pricing.CartLine `json:"lines"`
}

// Quote prices a cart without side effects.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var in quoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	breakdown, err := h.Svc.Quote(r.Context(), in.Lines)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": breakdown})
}

// Checkout runs the verified checkout flow.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid checkout request", err.Error())
			return
		}
	}
	out, err := h.Svc.Checkout(r.Context(), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	status := http.StatusOK
	if out.Order != nil && !out.Replayed {
		status = http.StatusCreated
	}
	common.JSON(w, status, map[string]any{"data": out})
}
