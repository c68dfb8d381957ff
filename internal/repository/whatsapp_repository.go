package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// WhatsappRepository defines persistence access for WhatsApp connections.
type WhatsappRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Whatsapp, error)
	GetDefault(ctx context.Context) (*domain.Whatsapp, error)
	List(ctx context.Context) ([]domain.Whatsapp, error)
}

type whatsappRepository struct {
	pool *pgxpool.Pool
}

// NewWhatsappRepository returns a Postgres-backed implementation.
func NewWhatsappRepository(pool *pgxpool.Pool) WhatsappRepository {
	return &whatsappRepository{pool: pool}
}

const whatsappSelect = `
    SELECT id, name, is_default, created_at, updated_at
    FROM whatsapps`

func (r *whatsappRepository) GetByID(ctx context.Context, id int64) (*domain.Whatsapp, error) {
	return r.fetchSingle(ctx, whatsappSelect+` WHERE id=$1`, id)
}

func (r *whatsappRepository) GetDefault(ctx context.Context) (*domain.Whatsapp, error) {
	return r.fetchSingle(ctx, whatsappSelect+` WHERE is_default=TRUE LIMIT 1`)
}

func (r *whatsappRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Whatsapp, error) {
	var whatsapp domain.Whatsapp
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&whatsapp.ID,
		&whatsapp.Name,
		&whatsapp.IsDefault,
		&whatsapp.CreatedAt,
		&whatsapp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &whatsapp, nil
}

func (r *whatsappRepository) List(ctx context.Context) ([]domain.Whatsapp, error) {
	rows, err := r.pool.Query(ctx, whatsappSelect+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Whatsapp
	for rows.Next() {
		var whatsapp domain.Whatsapp
		if err := rows.Scan(
			&whatsapp.ID,
			&whatsapp.Name,
			&whatsapp.IsDefault,
			&whatsapp.CreatedAt,
			&whatsapp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, whatsapp)
	}
	return result, rows.Err()
}
