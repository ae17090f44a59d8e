package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/ads-insights/internal/models"
)

// PostgresClientRepo implements ClientRepo using PostgreSQL.
type PostgresClientRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresClientRepo(pool *pgxpool.Pool) *PostgresClientRepo {
	return &PostgresClientRepo{pool: pool}
}

const clientColumns = `id, name, account_id, slug, status, created_at, updated_at`

func (r *PostgresClientRepo) ListActive(ctx context.Context) ([]*models.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients WHERE status = $1 ORDER BY name
	`, models.ClientStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.AccountID, &c.Slug, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

func (r *PostgresClientRepo) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	var c models.Client
	err := r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.AccountID, &c.Slug, &c.Status, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client %d: %w", id, err)
	}
	return &c, nil
}

func (r *PostgresClientRepo) GetBySlug(ctx context.Context, slug string) (*models.Client, error) {
	var c models.Client
	err := r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients WHERE slug = $1
	`, slug).Scan(&c.ID, &c.Name, &c.AccountID, &c.Slug, &c.Status, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client %q: %w", slug, err)
	}
	return &c, nil
}
