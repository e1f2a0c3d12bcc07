package models

import (
	"time"

	"github.com/google/uuid"
)

// Gig status enum. Transitions are strictly forward:
// open -> in_progress -> completed.
const (
	GigStatusOpen       = "open"
	GigStatusInProgress = "in_progress"
	GigStatusCompleted  = "completed"
)

type Gig struct {
	ID           int64     `json:"id"`
	LedgerID     uuid.UUID `json:"ledger_id"`
	Description  string    `json:"description"`
	Payment      int64     `json:"payment"`
	Deadline     int64     `json:"deadline"`
	PosterID     int64     `json:"poster_id"`
	ApplicantIDs []int64   `json:"applicant_ids"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
