package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger is the root aggregate: pooled escrow balance plus the sequential
// counters that assign account and gig ids. Owner is the principal that
// created the ledger and the only caller allowed to assign or complete gigs.
type Ledger struct {
	ID           uuid.UUID `json:"id"`
	Owner        uuid.UUID `json:"owner"`
	PoolBalance  int64     `json:"pool_balance"`
	AccountCount int64     `json:"account_count"`
	GigCount     int64     `json:"gig_count"`
	CreatedAt    time.Time `json:"created_at"`
}
