package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, a *models.Account) error {
	return tx.QueryRow(ctx, `
		INSERT INTO accounts (ledger_id, id, name, balance, posted_gig_ids, applied_gig_ids)
		VALUES ($1, $2, $3, 0, '{}', '{}')
		RETURNING created_at
	`, a.LedgerID, a.ID, a.Name).Scan(&a.CreatedAt)
}

func (r *AccountRepo) Get(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64) (*models.Account, error) {
	return scanAccount(tx.QueryRow(ctx, `
		SELECT ledger_id, id, name, balance, posted_gig_ids, applied_gig_ids, created_at
		FROM accounts WHERE ledger_id = $1 AND id = $2
	`, ledgerID, id))
}

// GetByID reads an account outside any transaction, for the HTTP layer.
func (r *AccountRepo) GetByID(ctx context.Context, ledgerID uuid.UUID, id int64) (*models.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT ledger_id, id, name, balance, posted_gig_ids, applied_gig_ids, created_at
		FROM accounts WHERE ledger_id = $1 AND id = $2
	`, ledgerID, id))
}

func (r *AccountRepo) List(ctx context.Context, ledgerID uuid.UUID) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ledger_id, id, name, balance, posted_gig_ids, applied_gig_ids, created_at
		FROM accounts WHERE ledger_id = $1 ORDER BY id
	`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *AccountRepo) Credit(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, amount int64) (newBalance int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $1
		WHERE ledger_id = $2 AND id = $3
		RETURNING balance
	`, amount, ledgerID, id).Scan(&newBalance)
	return newBalance, err
}

// Debit deducts amount only if the balance covers it. Returns pgx.ErrNoRows
// when the balance is insufficient, so balances can never go negative.
func (r *AccountRepo) Debit(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, amount int64) (newBalance int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance - $1
		WHERE ledger_id = $2 AND id = $3 AND balance >= $1
		RETURNING balance
	`, amount, ledgerID, id).Scan(&newBalance)
	return newBalance, err
}

func (r *AccountRepo) AppendPostedGig(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, gigID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET posted_gig_ids = array_append(posted_gig_ids, $1)
		WHERE ledger_id = $2 AND id = $3
	`, gigID, ledgerID, id)
	return err
}

func (r *AccountRepo) AppendAppliedGig(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, gigID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET applied_gig_ids = array_append(applied_gig_ids, $1)
		WHERE ledger_id = $2 AND id = $3
	`, gigID, ledgerID, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.LedgerID, &a.ID, &a.Name, &a.Balance, &a.PostedGigIDs, &a.AppliedGigIDs, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
