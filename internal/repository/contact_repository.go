package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// ContactRepository defines persistence access for contacts.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id int64) (*domain.Contact, error)
	GetByNumber(ctx context.Context, number string) (*domain.Contact, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a Postgres-backed implementation.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (name, number, profile_pic_url, is_group)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Number,
		contact.ProfilePicURL,
		contact.IsGroup,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	const query = `
        SELECT id, name, number, COALESCE(profile_pic_url, ''), is_group, created_at, updated_at
        FROM contacts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *contactRepository) GetByNumber(ctx context.Context, number string) (*domain.Contact, error) {
	const query = `
        SELECT id, name, number, COALESCE(profile_pic_url, ''), is_group, created_at, updated_at
        FROM contacts WHERE number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *contactRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Number,
		&contact.ProfilePicURL,
		&contact.IsGroup,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}
