package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
)

type registerAccountRequest struct {
	Name string `json:"name"`
}

type registerAccountResponse struct {
	AccountID int64 `json:"account_id"`
}

// RegisterAccount handles POST /api/v1/accounts. Any authenticated caller
// may register a participant; no further authorization applies.
func (h *Handler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req registerAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	id, err := h.Engine.RegisterAccount(r.Context(), led.ID, req.Name)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerAccountResponse{AccountID: id})
}

// GetAccount handles GET /api/v1/accounts/{id}.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := extractPathID(r, "/api/v1/accounts/")
	if !ok {
		http.Error(w, `{"error":"invalid account id"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	acc, err := h.Accounts.GetByID(r.Context(), led.ID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
			return
		}
		h.Logger.Error("get account", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// ListAccounts handles GET /api/v1/accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	accounts, err := h.Accounts.List(r.Context(), led.ID)
	if err != nil {
		h.Logger.Error("list accounts", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

type fundAccountRequest struct {
	Amount int64 `json:"amount"`
}

// FundAccount handles POST /api/v1/accounts/{id}/fund — the only entry
// point for external currency. AmountCheck has already rejected negative
// amounts.
func (h *Handler) FundAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := extractPathID(r, "/api/v1/accounts/")
	if !ok {
		http.Error(w, `{"error":"invalid account id"}`, http.StatusBadRequest)
		return
	}
	var req fundAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	if err := h.Engine.FundAccount(r.Context(), led.ID, id, req.Amount); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account_id": id, "funded": req.Amount})
}

// ListEntries handles GET /api/v1/accounts/{id}/entries — the audit trail
// of every balance move on one account.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := extractPathID(r, "/api/v1/accounts/")
	if !ok {
		http.Error(w, `{"error":"invalid account id"}`, http.StatusBadRequest)
		return
	}
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	entries, err := h.Entries.ListByAccount(r.Context(), led.ID, id)
	if err != nil {
		h.Logger.Error("list entries", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
