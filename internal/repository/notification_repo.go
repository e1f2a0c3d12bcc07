package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/backend/internal/models"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// CreateTx inserts a notification inside the mutation's transaction, so the
// notification exists iff the mutation committed.
func (r *NotificationRepo) CreateTx(ctx context.Context, tx pgx.Tx, n *models.Notification) error {
	return tx.QueryRow(ctx, `
		INSERT INTO notifications (id, ledger_id, kind, gig_id, user_id, description, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, n.ID, n.LedgerID, n.Kind, n.GigID, n.UserID, n.Description, n.Amount).Scan(&n.CreatedAt)
}

func (r *NotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := r.pool.QueryRow(ctx, `
		SELECT id, ledger_id, kind, gig_id, user_id, description, amount, created_at
		FROM notifications WHERE id = $1
	`, id).Scan(&n.ID, &n.LedgerID, &n.Kind, &n.GigID, &n.UserID, &n.Description, &n.Amount, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) List(ctx context.Context, ledgerID uuid.UUID) ([]*models.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ledger_id, kind, gig_id, user_id, description, amount, created_at
		FROM notifications WHERE ledger_id = $1 ORDER BY created_at
	`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.LedgerID, &n.Kind, &n.GigID, &n.UserID, &n.Description, &n.Amount, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
