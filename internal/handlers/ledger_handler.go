package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gigboard/backend/internal/middleware"
)

// CreateLedger handles POST /api/v1/ledgers. The authenticated caller
// becomes the ledger owner and the new root becomes the shared instance
// for all subsequent operations.
func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	caller := middleware.PrincipalFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	led, err := h.Engine.CreateLedger(r.Context(), caller)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, led)
}

// GetActiveLedger handles GET /api/v1/ledgers/active.
func (h *Handler) GetActiveLedger(w http.ResponseWriter, r *http.Request) {
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, led)
}
