package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/backend/internal/models"
)

type SubscriberRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriberRepo(pool *pgxpool.Pool) *SubscriberRepo {
	return &SubscriberRepo{pool: pool}
}

func (r *SubscriberRepo) Create(ctx context.Context, s *models.Subscriber) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO subscribers (id, webhook_url, is_active)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, s.ID, s.WebhookURL, s.IsActive).Scan(&s.CreatedAt)
}

func (r *SubscriberRepo) ListActive(ctx context.Context) ([]*models.Subscriber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, webhook_url, is_active, created_at
		FROM subscribers WHERE is_active ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.WebhookURL, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
