package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// MessageRepository defines persistence access for ticket messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.Message, error)
	MarkReadByTicket(ctx context.Context, ticketID int64) error
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository returns a Postgres-backed implementation.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, body, from_me, read)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		message.TicketID,
		message.Body,
		message.FromMe,
		message.Read,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, body, from_me, read, created_at
        FROM messages WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.TicketID,
			&message.Body,
			&message.FromMe,
			&message.Read,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}

func (r *messageRepository) MarkReadByTicket(ctx context.Context, ticketID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET read=TRUE WHERE ticket_id=$1 AND read=FALSE`, ticketID)
	return err
}
