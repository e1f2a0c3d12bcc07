package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a webhook target that receives every notification.
type Subscriber struct {
	ID         uuid.UUID `json:"id"`
	WebhookURL string    `json:"webhook_url"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
