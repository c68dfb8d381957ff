package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/chat-ticketing/internal/cache"
	"github.com/spec-kit/chat-ticketing/internal/domain"
	"github.com/spec-kit/chat-ticketing/internal/events"
	"github.com/spec-kit/chat-ticketing/internal/repository"
	apperrors "github.com/spec-kit/chat-ticketing/pkg/util"
)

// messagePreviewLength bounds the last_message column.
const messagePreviewLength = 120

// TicketService coordinates ticket write workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	contacts   repository.ContactRepository
	queues     repository.QueueRepository
	whatsapps  repository.WhatsappRepository
	messages   repository.MessageRepository
	unread     *cache.UnreadCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ContactRepo  repository.ContactRepository
	QueueRepo    repository.QueueRepository
	WhatsappRepo repository.WhatsappRepository
	MessageRepo  repository.MessageRepository
	UnreadCache  *cache.UnreadCache
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ContactID  int64
	WhatsappID int64
	QueueID    *int64
	UserID     *int64
	Status     domain.TicketStatus
	IsGroup    bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		contacts:   deps.ContactRepo,
		queues:     deps.QueueRepo,
		whatsapps:  deps.WhatsappRepo,
		messages:   deps.MessageRepo,
		unread:     deps.UnreadCache,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a ticket for a contact conversation.
func (s *TicketService) CreateTicket(ctx context.Context, actorID int64, input TicketCreateInput) (*domain.Ticket, error) {
	contact, err := s.contacts.GetByID(ctx, input.ContactID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", map[string]any{"contact_id": input.ContactID})
		}
		return nil, err
	}
	if input.QueueID != nil {
		if _, err := s.queues.GetByID(ctx, *input.QueueID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("queue", map[string]any{"queue_id": *input.QueueID})
			}
			return nil, err
		}
	}

	whatsappID := input.WhatsappID
	if whatsappID == 0 {
		// Tickets opened without an explicit connection land on the
		// default WhatsApp session.
		whatsapp, err := s.whatsapps.GetDefault(ctx)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("no default whatsapp connection configured", nil)
			}
			return nil, err
		}
		whatsappID = whatsapp.ID
	} else if _, err := s.whatsapps.GetByID(ctx, whatsappID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("whatsapp", map[string]any{"whatsapp_id": whatsappID})
		}
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.TicketStatusOpen
	}
	if !validStatus(status) {
		return nil, apperrors.NewValidationError("invalid ticket status", map[string]any{"status": status})
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		Status:      status,
		ContactID:   contact.ID,
		QueueID:     input.QueueID,
		WhatsappID:  whatsappID,
		UserID:      input.UserID,
		IsGroup:     input.IsGroup || contact.IsGroup,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload: events.TicketCreatedPayload{
			ContactID:  ticket.ContactID,
			QueueID:    ticket.QueueID,
			WhatsappID: ticket.WhatsappID,
			Status:     ticket.Status,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its joined projections.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// UpdateStatus moves a ticket between open, pending and closed.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, ticketID int64, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !validStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid ticket status", map[string]any{"status": newStatus})
	}
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// Transfer reassigns a ticket's queue and/or owner.
func (s *TicketService) Transfer(ctx context.Context, actorID, ticketID int64, queueID, userID *int64) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if queueID != nil {
		if _, err := s.queues.GetByID(ctx, *queueID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("queue", map[string]any{"queue_id": *queueID})
			}
			return nil, err
		}
	}

	oldQueueID := ticket.QueueID
	oldUserID := ticket.UserID
	if queueID != nil {
		ticket.QueueID = queueID
	}
	if userID != nil {
		ticket.UserID = userID
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.invalidateUnread(ctx, oldUserID)
	s.invalidateUnread(ctx, ticket.UserID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketTransferred,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload: events.TicketTransferredPayload{
			OldQueueID: oldQueueID,
			NewQueueID: ticket.QueueID,
			OldUserID:  oldUserID,
			NewUserID:  ticket.UserID,
		},
	})
	return ticket, nil
}

// AppendMessage adds a thread entry and keeps the ticket's unread count and
// last-message preview in sync. Inbound messages bump the unread count.
func (s *TicketService) AppendMessage(ctx context.Context, ticketID int64, body string, fromMe bool) (*domain.Message, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}

	message := &domain.Message{
		TicketID: ticket.ID,
		Body:     body,
		FromMe:   fromMe,
		Read:     fromMe,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	if err := s.tickets.RecordMessage(ctx, ticket.ID, stringPreview(body, messagePreviewLength), fromMe); err != nil {
		return nil, err
	}

	s.invalidateUnread(ctx, ticket.UserID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventMessageAppended,
		TicketID: ticket.ID,
		Payload: events.MessageAppendedPayload{
			MessageID:   message.ID,
			FromMe:      fromMe,
			BodyPreview: stringPreview(body, messagePreviewLength),
		},
	})
	return message, nil
}

// ListMessages returns a page of the ticket thread, newest first.
func (s *TicketService) ListMessages(ctx context.Context, ticketID int64, limit, offset int) ([]domain.Message, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.messages.ListByTicket(ctx, ticketID, limit, offset)
}

// MarkRead clears the unread state of a ticket and its messages.
func (s *TicketService) MarkRead(ctx context.Context, ticketID int64) error {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.messages.MarkReadByTicket(ctx, ticket.ID); err != nil {
		return err
	}
	if err := s.tickets.MarkRead(ctx, ticket.ID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, ticket.UserID)
	return nil
}

func (s *TicketService) invalidateUnread(ctx context.Context, userID *int64) {
	if userID == nil {
		return
	}
	_ = s.unread.Invalidate(ctx, *userID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validStatus(status domain.TicketStatus) bool {
	switch status {
	case domain.TicketStatusOpen, domain.TicketStatusPending, domain.TicketStatusClosed:
		return true
	}
	return false
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// stringPreview truncates on rune boundaries so multibyte text never
// lands in last_message as broken UTF-8.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
