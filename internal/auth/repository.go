package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new principal and returns it.
func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName string) (*Principal, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO principals (id, email, password_hash, display_name)
		VALUES ($1, $2, $3, $4)
	`, id, email, passwordHash, displayName)
	if err != nil {
		return nil, err
	}
	return &Principal{ID: id, Email: email, DisplayName: displayName}, nil
}

// GetByEmail returns the principal and password hash for login. Returns nil
// if not found.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Principal, string, error) {
	var p Principal
	var passwordHash string
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash
		FROM principals WHERE email = $1
	`, email)
	if err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &p, passwordHash, nil
}
