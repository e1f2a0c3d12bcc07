package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry_type enums. Every currency move writes one entry per
// affected account balance:
//   - deposit:     external funds credited by FundAccount
//   - escrow_lock: payment debited from the poster into the pool
//   - payout:      payment released from the pool to the worker
const (
	EntryDeposit    = "deposit"
	EntryEscrowLock = "escrow_lock"
	EntryPayout     = "payout"
)

type LedgerEntry struct {
	ID           uuid.UUID `json:"id"`
	LedgerID     uuid.UUID `json:"ledger_id"`
	AccountID    int64     `json:"account_id"`
	GigID        *int64    `json:"gig_id,omitempty"`
	EntryType    string    `json:"entry_type"`
	Amount       int64     `json:"amount"`
	BalanceAfter *int64    `json:"balance_after,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
