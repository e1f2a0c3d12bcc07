package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/backend/internal/models"
)

type LedgerRepo struct {
	pool *pgxpool.Pool
}

func NewLedgerRepo(pool *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, l *models.Ledger) error {
	return tx.QueryRow(ctx, `
		INSERT INTO ledgers (id, owner_id, pool_balance, account_count, gig_count)
		VALUES ($1, $2, 0, 0, 0)
		RETURNING pool_balance, account_count, gig_count, created_at
	`, l.ID, l.Owner).Scan(&l.PoolBalance, &l.AccountCount, &l.GigCount, &l.CreatedAt)
}

// GetForUpdate locks the ledger root row. Every engine operation calls this
// first, so operations against one ledger are fully serialized.
func (r *LedgerRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Ledger, error) {
	var l models.Ledger
	err := tx.QueryRow(ctx, `
		SELECT id, owner_id, pool_balance, account_count, gig_count, created_at
		FROM ledgers WHERE id = $1 FOR UPDATE
	`, id).Scan(&l.ID, &l.Owner, &l.PoolBalance, &l.AccountCount, &l.GigCount, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LedgerRepo) BumpAccountCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) (newCount int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE ledgers SET account_count = account_count + 1 WHERE id = $1
		RETURNING account_count
	`, id).Scan(&newCount)
	return newCount, err
}

func (r *LedgerRepo) BumpGigCount(ctx context.Context, tx pgx.Tx, id uuid.UUID) (newCount int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE ledgers SET gig_count = gig_count + 1 WHERE id = $1
		RETURNING gig_count
	`, id).Scan(&newCount)
	return newCount, err
}

func (r *LedgerRepo) CreditPool(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (newBalance int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE ledgers SET pool_balance = pool_balance + $1 WHERE id = $2
		RETURNING pool_balance
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// DebitPool deducts amount from the pool only if it can cover it. Returns
// pgx.ErrNoRows when the pool balance is insufficient.
func (r *LedgerRepo) DebitPool(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (newBalance int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE ledgers SET pool_balance = pool_balance - $1
		WHERE id = $2 AND pool_balance >= $1
		RETURNING pool_balance
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// Active returns the most recently created ledger. The deployment runs a
// single shared instance; this resolves it for the HTTP layer.
func (r *LedgerRepo) Active(ctx context.Context) (*models.Ledger, error) {
	var l models.Ledger
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, pool_balance, account_count, gig_count, created_at
		FROM ledgers ORDER BY created_at DESC LIMIT 1
	`).Scan(&l.ID, &l.Owner, &l.PoolBalance, &l.AccountCount, &l.GigCount, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
