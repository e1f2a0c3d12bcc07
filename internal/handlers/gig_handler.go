package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigboard/backend/internal/middleware"
)

type postGigRequest struct {
	PosterID    int64  `json:"poster_id"`
	Description string `json:"description"`
	Payment     int64  `json:"payment"`
	Deadline    int64  `json:"deadline"`
}

type postGigResponse struct {
	GigID  int64  `json:"gig_id"`
	Status string `json:"status"`
}

// PostGig handles POST /api/v1/gigs. The payment is escrowed from the
// poster into the pool before the gig becomes visible.
func (h *Handler) PostGig(w http.ResponseWriter, r *http.Request) {
	var req postGigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Description == "" {
		http.Error(w, `{"error":"description is required"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	gigID, err := h.Engine.PostGig(r.Context(), led.ID, req.PosterID, req.Description, req.Payment, req.Deadline)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	g, err := h.Gigs.GetByID(r.Context(), led.ID, gigID)
	if err != nil {
		h.Logger.Error("read back posted gig", "gig_id", gigID, "error", err)
		writeJSON(w, http.StatusCreated, postGigResponse{GigID: gigID})
		return
	}
	writeJSON(w, http.StatusCreated, postGigResponse{GigID: gigID, Status: g.Status})
}

// GetGig handles GET /api/v1/gigs/{id}.
func (h *Handler) GetGig(w http.ResponseWriter, r *http.Request) {
	id, ok := extractPathID(r, "/api/v1/gigs/")
	if !ok {
		http.Error(w, `{"error":"invalid gig id"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	g, err := h.Gigs.GetByID(r.Context(), led.ID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"gig not found"}`, http.StatusNotFound)
			return
		}
		h.Logger.Error("get gig", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// ListGigs handles GET /api/v1/gigs.
func (h *Handler) ListGigs(w http.ResponseWriter, r *http.Request) {
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	gigs, err := h.Gigs.List(r.Context(), led.ID)
	if err != nil {
		h.Logger.Error("list gigs", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, gigs)
}

type applyRequest struct {
	UserID int64 `json:"user_id"`
}

// ApplyForGig handles POST /api/v1/gigs/{id}/apply.
func (h *Handler) ApplyForGig(w http.ResponseWriter, r *http.Request) {
	gigID, ok := extractPathID(r, "/api/v1/gigs/")
	if !ok {
		http.Error(w, `{"error":"invalid gig id"}`, http.StatusBadRequest)
		return
	}
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	if err := h.Engine.ApplyForGig(r.Context(), led.ID, req.UserID, gigID); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"gig_id": gigID, "user_id": req.UserID})
}

type assignRequest struct {
	UserID int64 `json:"user_id"`
}

// AssignGig handles POST /api/v1/gigs/{id}/assign. Owner-only; the engine
// re-checks the caller against the ledger owner.
func (h *Handler) AssignGig(w http.ResponseWriter, r *http.Request) {
	caller := middleware.PrincipalFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	gigID, ok := extractPathID(r, "/api/v1/gigs/")
	if !ok {
		http.Error(w, `{"error":"invalid gig id"}`, http.StatusBadRequest)
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	if err := h.Engine.AssignGig(r.Context(), led.ID, gigID, req.UserID, caller); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"gig_id": gigID, "assigned_to": req.UserID})
}

type completeRequest struct {
	ApplicantID int64 `json:"applicant_id"`
}

// CompleteGig handles POST /api/v1/gigs/{id}/complete. Owner-only; settles
// the escrowed payment to the applicant.
func (h *Handler) CompleteGig(w http.ResponseWriter, r *http.Request) {
	caller := middleware.PrincipalFromCtx(r.Context())
	if caller == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	gigID, ok := extractPathID(r, "/api/v1/gigs/")
	if !ok {
		http.Error(w, `{"error":"invalid gig id"}`, http.StatusBadRequest)
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	if err := h.Engine.CompleteGig(r.Context(), led.ID, gigID, req.ApplicantID, caller); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"gig_id": gigID, "applicant_id": req.ApplicantID})
}
