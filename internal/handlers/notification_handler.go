package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/gigboard/backend/internal/models"
)

// ListNotifications handles GET /api/v1/notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	led, ok := h.activeLedger(w, r)
	if !ok {
		return
	}
	list, err := h.Notifications.List(r.Context(), led.ID)
	if err != nil {
		h.Logger.Error("list notifications", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createSubscriberRequest struct {
	WebhookURL string `json:"webhook_url"`
}

// CreateSubscriber handles POST /api/v1/subscribers — registers a webhook
// that will receive every future notification.
func (h *Handler) CreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req createSubscriberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	u, err := url.Parse(req.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		http.Error(w, `{"error":"webhook_url must be an http(s) URL"}`, http.StatusBadRequest)
		return
	}
	sub := &models.Subscriber{ID: uuid.New(), WebhookURL: req.WebhookURL, IsActive: true}
	if err := h.Subscribers.Create(r.Context(), sub); err != nil {
		h.Logger.Error("create subscriber", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
