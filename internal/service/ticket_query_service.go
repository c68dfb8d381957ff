package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/chat-ticketing/internal/auth"
	"github.com/spec-kit/chat-ticketing/internal/cache"
	"github.com/spec-kit/chat-ticketing/internal/domain"
	"github.com/spec-kit/chat-ticketing/internal/repository"
	apperrors "github.com/spec-kit/chat-ticketing/pkg/util"
)

// ticketsPageSize is the fixed page size for ticket listings.
const ticketsPageSize = 40

// ListTicketsInput carries the listing parameters after transport parsing.
type ListTicketsInput struct {
	UserID     int64
	Page       int
	Status     string
	Date       string
	Search     string
	ShowAll    bool
	UnreadOnly bool
	// QueueIDs is caller-supplied and untrusted; it only takes effect for
	// elevated agents via auth.ScopeForUser.
	QueueIDs []int64
}

// TicketPage is one page of a ticket listing.
type TicketPage struct {
	Tickets []domain.Ticket
	Count   int
	HasMore bool
}

// TicketQueryService answers ticket listing and unread-badge reads.
type TicketQueryService struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
	unread  *cache.UnreadCache
}

// NewTicketQueryService constructs the service. The unread cache may be nil.
func NewTicketQueryService(users repository.UserRepository, tickets repository.TicketRepository, unread *cache.UnreadCache) *TicketQueryService {
	return &TicketQueryService{users: users, tickets: tickets, unread: unread}
}

// ListTickets resolves the acting agent, derives the visibility scope and
// assembles the search clauses, then fetches one counted page ordered by
// last update descending.
func (s *TicketQueryService) ListTickets(ctx context.Context, input ListTicketsInput) (*TicketPage, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.UserID})
		}
		return nil, err
	}

	scope := auth.ScopeForUser(user, input.QueueIDs)
	search, err := buildTicketSearch(scope, input)
	if err != nil {
		return nil, err
	}

	tickets, count, err := s.tickets.Search(ctx, search)
	if err != nil {
		return nil, err
	}

	return &TicketPage{
		Tickets: tickets,
		Count:   count,
		HasMore: count > search.Offset+len(tickets),
	}, nil
}

// buildTicketSearch maps the scope and filters onto search clauses. Absent
// optional filters simply stay off.
func buildTicketSearch(scope auth.TicketScope, input ListTicketsInput) (repository.TicketSearch, error) {
	search := repository.TicketSearch{
		QueueIDs:       scope.QueueIDs,
		RestrictQueues: scope.Restrict,
		SearchTerm:     input.Search,
		UnreadOnly:     input.UnreadOnly,
	}

	if !input.ShowAll {
		owner := scope.UserID
		search.OwnerID = &owner
	}

	if input.Status != "" {
		status := domain.TicketStatus(input.Status)
		search.Status = &status
	}

	if input.Date != "" {
		from, to, err := dayInterval(input.Date)
		if err != nil {
			return repository.TicketSearch{}, apperrors.NewValidationError(
				"invalid date filter", map[string]any{"date": input.Date})
		}
		search.CreatedFrom = &from
		search.CreatedTo = &to
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	search.Limit = ticketsPageSize
	search.Offset = ticketsPageSize * (page - 1)
	return search, nil
}

// dayInterval expands a calendar date into the closed interval covering that
// day in server-local time, millisecond precision on the upper bound.
func dayInterval(value string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := day
	to := day.AddDate(0, 0, 1).Add(-time.Millisecond)
	return from, to, nil
}

// UnreadTotal returns the unread message total across the agent's visible
// tickets, served from the cache when fresh.
func (s *TicketQueryService) UnreadTotal(ctx context.Context, userID int64) (int, error) {
	if total, ok, err := s.unread.Get(ctx, userID); err == nil && ok {
		return total, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return 0, err
	}

	scope := auth.ScopeForUser(user, nil)
	owner := scope.UserID
	total, err := s.tickets.UnreadTotal(ctx, repository.TicketSearch{
		QueueIDs:       scope.QueueIDs,
		RestrictQueues: scope.Restrict,
		OwnerID:        &owner,
	})
	if err != nil {
		return 0, err
	}

	_ = s.unread.Set(ctx, userID, total)
	return total, nil
}
