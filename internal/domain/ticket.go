package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusClosed  TicketStatus = "closed"
)

// Ticket is the aggregate for a customer conversation.
type Ticket struct {
	ID             int64
	ExternalKey    string
	Status         TicketStatus
	ContactID      int64
	QueueID        *int64
	WhatsappID     int64
	UserID         *int64
	UnreadMessages int
	LastMessage    string
	IsGroup        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined summaries populated by list/get projections.
	Contact  *ContactSummary
	Queue    *QueueSummary
	Whatsapp *WhatsappSummary
}

// ContactSummary is the contact projection embedded in ticket reads.
type ContactSummary struct {
	ID            int64
	Name          string
	Number        string
	ProfilePicURL string
}

// QueueSummary is the queue projection embedded in ticket reads.
type QueueSummary struct {
	ID    int64
	Name  string
	Color string
}

// WhatsappSummary identifies the connection a ticket arrived through.
type WhatsappSummary struct {
	ID   int64
	Name string
}
