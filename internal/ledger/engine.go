package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigboard/backend/internal/models"
)

// ErrNotFound is returned when a referenced ledger, account, or gig id
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized covers every rejected mutation: non-owner caller on an
// owner-only operation, insufficient balance, poster self-assignment,
// duplicate application, wrong gig status, or a settlement target that
// never applied.
var ErrUnauthorized = errors.New("unauthorized")

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LedgerStore is the root-row store. GetForUpdate locks the row, which
// serializes every operation against one ledger instance.
type LedgerStore interface {
	Create(ctx context.Context, tx pgx.Tx, l *models.Ledger) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Ledger, error)
	BumpAccountCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) (newCount int64, err error)
	BumpGigCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) (newCount int64, err error)
	CreditPool(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (newBalance int64, err error)
	DebitPool(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (newBalance int64, err error)
}

// AccountStore is the minimal account interface for the engine. Debit is
// conditional on sufficient balance and returns pgx.ErrNoRows otherwise.
type AccountStore interface {
	Create(ctx context.Context, tx pgx.Tx, a *models.Account) error
	Get(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64) (*models.Account, error)
	Credit(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, amount int64) (newBalance int64, err error)
	Debit(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, amount int64) (newBalance int64, err error)
	AppendPostedGig(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, gigID int64) error
	AppendAppliedGig(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, gigID int64) error
}

// GigStore is the minimal gig interface for the engine.
type GigStore interface {
	Create(ctx context.Context, tx pgx.Tx, g *models.Gig) error
	Get(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64) (*models.Gig, error)
	AppendApplicant(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, userID int64) error
	SetStatus(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64, status string) error
}

// EntryStore records one audit entry per balance move.
type EntryStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, e *models.LedgerEntry) error
}

// EmitNotificationTxFunc persists a notification and enqueues its delivery
// within the given transaction. Provided by main using river.Client.InsertTx.
type EmitNotificationTxFunc func(ctx context.Context, tx pgx.Tx, n *models.Notification) error

// Engine owns the gig lifecycle and all currency movement. Every operation
// runs in exactly one transaction, locks the ledger root row first, and
// either commits fully or leaves no trace.
type Engine struct {
	pool     TxBeginner
	ledgers  LedgerStore
	accounts AccountStore
	gigs     GigStore
	entries  EntryStore
	emit     EmitNotificationTxFunc
}

// NewEngine creates the ledger engine. emit is typically a closure over
// river.Client.InsertTx plus a notification insert.
func NewEngine(pool TxBeginner, ledgers LedgerStore, accounts AccountStore, gigs GigStore, entries EntryStore, emit EmitNotificationTxFunc) *Engine {
	return &Engine{pool: pool, ledgers: ledgers, accounts: accounts, gigs: gigs, entries: entries, emit: emit}
}

// CreateLedger produces a fresh root with zero accounts, zero gigs, and a
// zero pool balance. The caller becomes the owner.
func (e *Engine) CreateLedger(ctx context.Context, caller uuid.UUID) (*models.Ledger, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	l := &models.Ledger{ID: uuid.New(), Owner: caller}
	if err := e.ledgers.Create(ctx, tx, l); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// RegisterAccount appends a new zero-balance account and returns its
// sequential id. Any caller may self-register.
func (e *Engine) RegisterAccount(ctx context.Context, ledgerID uuid.UUID, name string) (int64, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := e.lockLedger(ctx, tx, ledgerID); err != nil {
		return 0, err
	}
	newCount, err := e.ledgers.BumpAccountCount(ctx, tx, ledgerID)
	if err != nil {
		return 0, err
	}
	id := newCount - 1
	acc := &models.Account{
		ID:            id,
		LedgerID:      ledgerID,
		Name:          name,
		PostedGigIDs:  []int64{},
		AppliedGigIDs: []int64{},
	}
	if err := e.accounts.Create(ctx, tx, acc); err != nil {
		return 0, err
	}
	return id, tx.Commit(ctx)
}

// PostGig escrows payment from the poster into the pool and creates the gig
// in the open state. The debit and the pool credit happen in the same
// transaction, so no intermediate state is ever visible.
func (e *Engine) PostGig(ctx context.Context, ledgerID uuid.UUID, posterID int64, description string, payment, deadline int64) (int64, error) {
	if payment < 0 {
		return 0, fmt.Errorf("payment must be non-negative: %w", ErrUnauthorized)
	}
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := e.lockLedger(ctx, tx, ledgerID); err != nil {
		return 0, err
	}
	poster, err := e.getAccount(ctx, tx, ledgerID, posterID)
	if err != nil {
		return 0, err
	}
	if poster.Balance < payment {
		return 0, fmt.Errorf("account %d has %d, gig needs %d: %w", posterID, poster.Balance, payment, ErrUnauthorized)
	}

	newCount, err := e.ledgers.BumpGigCount(ctx, tx, ledgerID)
	if err != nil {
		return 0, err
	}
	gigID := newCount - 1

	newBalance, err := e.accounts.Debit(ctx, tx, ledgerID, posterID, payment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("insufficient funds on account %d: %w", posterID, ErrUnauthorized)
		}
		return 0, err
	}
	if _, err := e.ledgers.CreditPool(ctx, tx, ledgerID, payment); err != nil {
		return 0, err
	}

	gig := &models.Gig{
		ID:           gigID,
		LedgerID:     ledgerID,
		Description:  description,
		Payment:      payment,
		Deadline:     deadline,
		PosterID:     posterID,
		ApplicantIDs: []int64{},
		Status:       models.GigStatusOpen,
	}
	if err := e.gigs.Create(ctx, tx, gig); err != nil {
		return 0, err
	}
	if err := e.accounts.AppendPostedGig(ctx, tx, ledgerID, posterID, gigID); err != nil {
		return 0, err
	}
	if err := e.entries.CreateTx(ctx, tx, &models.LedgerEntry{
		ID: uuid.New(), LedgerID: ledgerID, AccountID: posterID, GigID: i64Ptr(gigID),
		EntryType: models.EntryEscrowLock, Amount: payment, BalanceAfter: i64Ptr(newBalance),
	}); err != nil {
		return 0, err
	}
	if err := e.emit(ctx, tx, &models.Notification{
		ID: uuid.New(), LedgerID: ledgerID, Kind: models.NotifyGigPosted,
		GigID: i64Ptr(gigID), Description: strPtr(description), Amount: i64Ptr(payment),
	}); err != nil {
		return 0, err
	}
	return gigID, tx.Commit(ctx)
}

// ApplyForGig appends the user to the gig's applicant set. Applications are
// accepted regardless of gig status; only duplicates are rejected.
func (e *Engine) ApplyForGig(ctx context.Context, ledgerID uuid.UUID, userID, gigID int64) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := e.lockLedger(ctx, tx, ledgerID); err != nil {
		return err
	}
	if _, err := e.getAccount(ctx, tx, ledgerID, userID); err != nil {
		return err
	}
	gig, err := e.getGig(ctx, tx, ledgerID, gigID)
	if err != nil {
		return err
	}
	if containsID(gig.ApplicantIDs, userID) {
		return fmt.Errorf("account %d already applied to gig %d: %w", userID, gigID, ErrUnauthorized)
	}
	if err := e.gigs.AppendApplicant(ctx, tx, ledgerID, gigID, userID); err != nil {
		return err
	}
	if err := e.accounts.AppendAppliedGig(ctx, tx, ledgerID, userID, gigID); err != nil {
		return err
	}
	if err := e.emit(ctx, tx, &models.Notification{
		ID: uuid.New(), LedgerID: ledgerID, Kind: models.NotifyGigApplied,
		GigID: i64Ptr(gigID), UserID: i64Ptr(userID),
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AssignGig moves an open gig to in_progress. Owner-only. The target user
// must have applied and must not be the poster.
func (e *Engine) AssignGig(ctx context.Context, ledgerID uuid.UUID, gigID, userID int64, caller uuid.UUID) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	led, err := e.lockLedger(ctx, tx, ledgerID)
	if err != nil {
		return err
	}
	if caller != led.Owner {
		return fmt.Errorf("caller is not the ledger owner: %w", ErrUnauthorized)
	}
	gig, err := e.getGig(ctx, tx, ledgerID, gigID)
	if err != nil {
		return err
	}
	if _, err := e.getAccount(ctx, tx, ledgerID, userID); err != nil {
		return err
	}
	if userID == gig.PosterID {
		return fmt.Errorf("poster cannot work own gig %d: %w", gigID, ErrUnauthorized)
	}
	if !containsID(gig.ApplicantIDs, userID) {
		return fmt.Errorf("account %d never applied to gig %d: %w", userID, gigID, ErrUnauthorized)
	}
	switch gig.Status {
	case models.GigStatusOpen:
		// assignable
	case models.GigStatusInProgress:
		return fmt.Errorf("gig %d is already assigned: %w", gigID, ErrUnauthorized)
	case models.GigStatusCompleted:
		return fmt.Errorf("gig %d is already completed: %w", gigID, ErrUnauthorized)
	default:
		return fmt.Errorf("gig %d has unknown status %q", gigID, gig.Status)
	}
	if err := e.gigs.SetStatus(ctx, tx, ledgerID, gigID, models.GigStatusInProgress); err != nil {
		return err
	}
	if err := e.emit(ctx, tx, &models.Notification{
		ID: uuid.New(), LedgerID: ledgerID, Kind: models.NotifyGigAssigned,
		GigID: i64Ptr(gigID), UserID: i64Ptr(userID),
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CompleteGig settles an in_progress gig: marks it completed and releases
// the escrowed payment from the pool to the applicant, atomically.
func (e *Engine) CompleteGig(ctx context.Context, ledgerID uuid.UUID, gigID, applicantID int64, caller uuid.UUID) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	led, err := e.lockLedger(ctx, tx, ledgerID)
	if err != nil {
		return err
	}
	if caller != led.Owner {
		return fmt.Errorf("caller is not the ledger owner: %w", ErrUnauthorized)
	}
	gig, err := e.getGig(ctx, tx, ledgerID, gigID)
	if err != nil {
		return err
	}
	if _, err := e.getAccount(ctx, tx, ledgerID, applicantID); err != nil {
		return err
	}
	switch gig.Status {
	case models.GigStatusInProgress:
		// settleable
	case models.GigStatusOpen:
		return fmt.Errorf("gig %d was never assigned: %w", gigID, ErrUnauthorized)
	case models.GigStatusCompleted:
		return fmt.Errorf("gig %d is already settled: %w", gigID, ErrUnauthorized)
	default:
		return fmt.Errorf("gig %d has unknown status %q", gigID, gig.Status)
	}
	if !containsID(gig.ApplicantIDs, applicantID) {
		return fmt.Errorf("account %d never applied to gig %d: %w", applicantID, gigID, ErrUnauthorized)
	}

	if err := e.gigs.SetStatus(ctx, tx, ledgerID, gigID, models.GigStatusCompleted); err != nil {
		return err
	}
	if _, err := e.ledgers.DebitPool(ctx, tx, ledgerID, gig.Payment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("pool cannot cover payment for gig %d: %w", gigID, ErrUnauthorized)
		}
		return err
	}
	newBalance, err := e.accounts.Credit(ctx, tx, ledgerID, applicantID, gig.Payment)
	if err != nil {
		return err
	}
	if err := e.entries.CreateTx(ctx, tx, &models.LedgerEntry{
		ID: uuid.New(), LedgerID: ledgerID, AccountID: applicantID, GigID: i64Ptr(gigID),
		EntryType: models.EntryPayout, Amount: gig.Payment, BalanceAfter: i64Ptr(newBalance),
	}); err != nil {
		return err
	}
	if err := e.emit(ctx, tx, &models.Notification{
		ID: uuid.New(), LedgerID: ledgerID, Kind: models.NotifyGigCompleted,
		GigID: i64Ptr(gigID), UserID: i64Ptr(applicantID), Amount: i64Ptr(gig.Payment),
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FundAccount credits an account with externally deposited currency. This
// is the only operation that injects new currency into the ledger.
func (e *Engine) FundAccount(ctx context.Context, ledgerID uuid.UUID, userID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("deposit must be non-negative: %w", ErrUnauthorized)
	}
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := e.lockLedger(ctx, tx, ledgerID); err != nil {
		return err
	}
	if _, err := e.getAccount(ctx, tx, ledgerID, userID); err != nil {
		return err
	}
	newBalance, err := e.accounts.Credit(ctx, tx, ledgerID, userID, amount)
	if err != nil {
		return err
	}
	if err := e.entries.CreateTx(ctx, tx, &models.LedgerEntry{
		ID: uuid.New(), LedgerID: ledgerID, AccountID: userID,
		EntryType: models.EntryDeposit, Amount: amount, BalanceAfter: i64Ptr(newBalance),
	}); err != nil {
		return err
	}
	if err := e.emit(ctx, tx, &models.Notification{
		ID: uuid.New(), LedgerID: ledgerID, Kind: models.NotifyAccountFunded,
		UserID: i64Ptr(userID), Amount: i64Ptr(amount),
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (e *Engine) lockLedger(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Ledger, error) {
	l, err := e.ledgers.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ledger %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return l, nil
}

func (e *Engine) getAccount(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64) (*models.Account, error) {
	a, err := e.accounts.Get(ctx, tx, ledgerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (e *Engine) getGig(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64) (*models.Gig, error) {
	g, err := e.gigs.Get(ctx, tx, ledgerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("gig %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return g, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func i64Ptr(n int64) *int64   { return &n }
func strPtr(s string) *string { return &s }
