package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification kind enums. One notification is written per successful
// mutation, in the same transaction as the mutation itself.
const (
	NotifyGigPosted     = "gig_posted"
	NotifyGigApplied    = "gig_applied"
	NotifyGigAssigned   = "gig_assigned"
	NotifyAccountFunded = "account_funded"
	NotifyGigCompleted  = "gig_completed"
)

// Notification is a flat record of scalar fields; unused fields are nil
// depending on Kind.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	LedgerID    uuid.UUID `json:"ledger_id"`
	Kind        string    `json:"kind"`
	GigID       *int64    `json:"gig_id,omitempty"`
	UserID      *int64    `json:"user_id,omitempty"`
	Description *string   `json:"description,omitempty"`
	Amount      *int64    `json:"amount,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
