package models

import (
	"time"

	"github.com/google/uuid"
)

// Account ids are sequential per ledger and never reused; the row is
// append-only except for Balance and the two gig-id lists.
type Account struct {
	ID            int64     `json:"id"`
	LedgerID      uuid.UUID `json:"ledger_id"`
	Name          string    `json:"name"`
	Balance       int64     `json:"balance"`
	PostedGigIDs  []int64   `json:"posted_gig_ids"`
	AppliedGigIDs []int64   `json:"applied_gig_ids"`
	CreatedAt     time.Time `json:"created_at"`
}
