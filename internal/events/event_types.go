package events

import (
	"time"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// EventType enumerates published domain events.
type EventType string

const (
	EventTicketCreated       EventType = "ticket.created"
	EventTicketStatusChanged EventType = "ticket.status_changed"
	EventTicketTransferred   EventType = "ticket.transferred"
	EventMessageAppended     EventType = "ticket.message_appended"
)

// Event is the envelope delivered to subscribers.
type Event struct {
	ID        string
	Type      EventType
	TicketID  int64
	ActorID   *int64
	Timestamp time.Time
	Payload   any
}

// TicketCreatedPayload describes a new ticket.
type TicketCreatedPayload struct {
	ContactID  int64
	QueueID    *int64
	WhatsappID int64
	Status     domain.TicketStatus
}

// TicketStatusChangedPayload describes a status transition.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus
	NewStatus domain.TicketStatus
}

// TicketTransferredPayload describes a queue/owner handoff.
type TicketTransferredPayload struct {
	OldQueueID *int64
	NewQueueID *int64
	OldUserID  *int64
	NewUserID  *int64
}

// MessageAppendedPayload describes a new thread entry.
type MessageAppendedPayload struct {
	MessageID   int64
	FromMe      bool
	BodyPreview string
}
