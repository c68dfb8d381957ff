package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// TicketSearch captures the clauses of a ticket listing. Each field toggles
// one clause; the clause order and boolean combination are fixed by
// buildClauses and belong to the query contract.
type TicketSearch struct {
	// QueueIDs is the effective visibility scope; applied when RestrictQueues.
	QueueIDs       []int64
	RestrictQueues bool
	// OwnerID enables the ownership-or-pending group when set.
	OwnerID     *int64
	Status      *domain.TicketStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SearchTerm  string
	UnreadOnly  bool
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Search(ctx context.Context, search TicketSearch) ([]domain.Ticket, int, error)
	UnreadTotal(ctx context.Context, search TicketSearch) (int, error)
	RecordMessage(ctx context.Context, ticketID int64, preview string, fromMe bool) error
	MarkRead(ctx context.Context, ticketID int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, status, contact_id, queue_id, whatsapp_id, user_id, unread_messages, last_message, is_group)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.Status,
		ticket.ContactID,
		ticket.QueueID,
		ticket.WhatsappID,
		ticket.UserID,
		ticket.UnreadMessages,
		ticket.LastMessage,
		ticket.IsGroup,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, queue_id=$2, user_id=$3, unread_messages=$4,
            last_message=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.QueueID,
		ticket.UserID,
		ticket.UnreadMessages,
		ticket.LastMessage,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ticketSelect is the joined projection shared by GetByID and Search.
const ticketSelect = `t.id, t.external_key, t.status, t.contact_id, t.queue_id, t.whatsapp_id,
           t.user_id, t.unread_messages, t.last_message, t.is_group, t.created_at, t.updated_at,
           c.id, c.name, c.number, COALESCE(c.profile_pic_url, ''),
           q.id, q.name, q.color,
           w.id, w.name`

const ticketJoins = `
    FROM tickets t
    JOIN contacts c ON c.id = t.contact_id
    LEFT JOIN queues q ON q.id = t.queue_id
    JOIN whatsapps w ON w.id = t.whatsapp_id`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketSelect + ticketJoins + ` WHERE t.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// buildClauses assembles the WHERE clauses in their contractual order:
// queue scope, ownership-or-pending, status, date range, search group,
// unread. All clauses combine with AND; ownership and search are each a
// single OR-group inside that conjunction.
func buildClauses(search TicketSearch) (clauses []string, args []any, messageJoin string) {
	clauses = []string{}
	args = []any{}

	if search.RestrictQueues {
		placeholders := make([]string, len(search.QueueIDs))
		for i, queueID := range search.QueueIDs {
			args = append(args, queueID)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.queue_id IN (%s)", strings.Join(placeholders, ",")))
	}

	if search.OwnerID != nil {
		args = append(args, *search.OwnerID)
		owner := len(args)
		args = append(args, domain.TicketStatusPending)
		clauses = append(clauses, fmt.Sprintf("(t.user_id = $%d OR t.status = $%d)", owner, len(args)))
	}

	if search.Status != nil {
		args = append(args, *search.Status)
		clauses = append(clauses, fmt.Sprintf("t.status = $%d", len(args)))
	}

	if search.CreatedFrom != nil {
		args = append(args, *search.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if search.CreatedTo != nil {
		args = append(args, *search.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}

	if term := strings.ToLower(strings.TrimSpace(search.SearchTerm)); term != "" {
		args = append(args, "%"+term+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		// The join carries the body match so unmatched tickets survive it;
		// the OR-group then tests join success via m.id.
		messageJoin = fmt.Sprintf("\n    LEFT JOIN messages m ON m.ticket_id = t.id AND LOWER(m.body) LIKE %s", placeholder)
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(c.name) LIKE %s OR c.number LIKE %s OR m.id IS NOT NULL)",
			placeholder, placeholder))
	}

	if search.UnreadOnly {
		clauses = append(clauses, "t.unread_messages > 0")
	}

	if len(clauses) == 0 {
		clauses = append(clauses, "1=1")
	}
	return clauses, args, messageJoin
}

// buildSearchQuery renders the page and count statements for a search. Both
// share the same argument list; the count de-duplicates rows the message
// join may have multiplied.
func buildSearchQuery(search TicketSearch) (listSQL, countSQL string, args []any) {
	clauses, args, messageJoin := buildClauses(search)
	where := strings.Join(clauses, " AND ")

	distinct := ""
	if messageJoin != "" {
		distinct = "DISTINCT "
	}

	limit := search.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := search.Offset
	if offset < 0 {
		offset = 0
	}

	listSQL = fmt.Sprintf("SELECT %s%s%s%s WHERE %s ORDER BY t.updated_at DESC LIMIT %d OFFSET %d",
		distinct, ticketSelect, ticketJoins, messageJoin, where, limit, offset)
	countSQL = fmt.Sprintf("SELECT COUNT(DISTINCT t.id)%s%s WHERE %s",
		ticketJoins, messageJoin, where)
	return listSQL, countSQL, args
}

func (r *ticketRepository) Search(ctx context.Context, search TicketSearch) ([]domain.Ticket, int, error) {
	listSQL, countSQL, args := buildSearchQuery(search)

	var count int
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, count, nil
}

func (r *ticketRepository) UnreadTotal(ctx context.Context, search TicketSearch) (int, error) {
	clauses, args, messageJoin := buildClauses(search)
	query := fmt.Sprintf("SELECT COALESCE(SUM(t.unread_messages), 0)%s%s WHERE %s",
		ticketJoins, messageJoin, strings.Join(clauses, " AND "))

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ticketRepository) RecordMessage(ctx context.Context, ticketID int64, preview string, fromMe bool) error {
	const query = `
        UPDATE tickets
        SET last_message=$1,
            unread_messages = unread_messages + CASE WHEN $2 THEN 0 ELSE 1 END,
            updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, preview, fromMe, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) MarkRead(ctx context.Context, ticketID int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET unread_messages=0 WHERE id=$1`, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket    domain.Ticket
		contact   domain.ContactSummary
		queueID   *int64
		queueName *string
		queueCol  *string
		whatsapp  domain.WhatsappSummary
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Status,
		&ticket.ContactID,
		&ticket.QueueID,
		&ticket.WhatsappID,
		&ticket.UserID,
		&ticket.UnreadMessages,
		&ticket.LastMessage,
		&ticket.IsGroup,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&contact.ID,
		&contact.Name,
		&contact.Number,
		&contact.ProfilePicURL,
		&queueID,
		&queueName,
		&queueCol,
		&whatsapp.ID,
		&whatsapp.Name,
	); err != nil {
		return nil, err
	}
	ticket.Contact = &contact
	ticket.Whatsapp = &whatsapp
	if queueID != nil {
		queue := domain.QueueSummary{ID: *queueID}
		if queueName != nil {
			queue.Name = *queueName
		}
		if queueCol != nil {
			queue.Color = *queueCol
		}
		ticket.Queue = &queue
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
