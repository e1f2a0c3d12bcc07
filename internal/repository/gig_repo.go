package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/backend/internal/models"
)

type GigRepo struct {
	pool *pgxpool.Pool
}

func NewGigRepo(pool *pgxpool.Pool) *GigRepo {
	return &GigRepo{pool: pool}
}

func (r *GigRepo) Create(ctx context.Context, tx pgx.Tx, g *models.Gig) error {
	return tx.QueryRow(ctx, `
		INSERT INTO gigs (ledger_id, id, description, payment, deadline, poster_id, applicant_ids, status)
		VALUES ($1, $2, $3, $4, $5, $6, '{}', $7)
		RETURNING created_at, updated_at
	`, g.LedgerID, g.ID, g.Description, g.Payment, g.Deadline, g.PosterID, g.Status).Scan(&g.CreatedAt, &g.UpdatedAt)
}

func (r *GigRepo) Get(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64) (*models.Gig, error) {
	return scanGig(tx.QueryRow(ctx, `
		SELECT ledger_id, id, description, payment, deadline, poster_id, applicant_ids, status, created_at, updated_at
		FROM gigs WHERE ledger_id = $1 AND id = $2
	`, ledgerID, id))
}

// GetByID reads a gig outside any transaction, for the HTTP layer.
func (r *GigRepo) GetByID(ctx context.Context, ledgerID uuid.UUID, id int64) (*models.Gig, error) {
	return scanGig(r.pool.QueryRow(ctx, `
		SELECT ledger_id, id, description, payment, deadline, poster_id, applicant_ids, status, created_at, updated_at
		FROM gigs WHERE ledger_id = $1 AND id = $2
	`, ledgerID, id))
}

func (r *GigRepo) List(ctx context.Context, ledgerID uuid.UUID) ([]*models.Gig, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ledger_id, id, description, payment, deadline, poster_id, applicant_ids, status, created_at, updated_at
		FROM gigs WHERE ledger_id = $1 ORDER BY id
	`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Gig
	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *GigRepo) AppendApplicant(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id, userID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE gigs SET applicant_ids = array_append(applicant_ids, $1), updated_at = now()
		WHERE ledger_id = $2 AND id = $3
	`, userID, ledgerID, id)
	return err
}

func (r *GigRepo) SetStatus(ctx context.Context, tx pgx.Tx, ledgerID uuid.UUID, id int64, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE gigs SET status = $1, updated_at = now()
		WHERE ledger_id = $2 AND id = $3
	`, status, ledgerID, id)
	return err
}

func scanGig(row rowScanner) (*models.Gig, error) {
	var g models.Gig
	err := row.Scan(&g.LedgerID, &g.ID, &g.Description, &g.Payment, &g.Deadline, &g.PosterID, &g.ApplicantIDs, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
