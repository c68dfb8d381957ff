package dto

import (
	"time"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ContactID  int64               `json:"contact_id"`
	WhatsappID int64               `json:"whatsapp_id"`
	QueueID    *int64              `json:"queue_id"`
	UserID     *int64              `json:"user_id"`
	Status     domain.TicketStatus `json:"status"`
	IsGroup    bool                `json:"is_group"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TransferTicketRequest payload.
type TransferTicketRequest struct {
	QueueID *int64 `json:"queue_id"`
	UserID  *int64 `json:"user_id"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body   string `json:"body"`
	FromMe bool   `json:"from_me"`
}

// ContactSummaryResponse embedded contact projection.
type ContactSummaryResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Number        string `json:"number"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

// QueueSummaryResponse embedded queue projection.
type QueueSummaryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// WhatsappSummaryResponse embedded connection projection.
type WhatsappSummaryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             int64                    `json:"id"`
	ExternalKey    string                   `json:"external_key"`
	Status         domain.TicketStatus      `json:"status"`
	UnreadMessages int                      `json:"unread_messages"`
	LastMessage    string                   `json:"last_message"`
	IsGroup        bool                     `json:"is_group"`
	UserID         *int64                   `json:"user_id"`
	Contact        *ContactSummaryResponse  `json:"contact,omitempty"`
	Queue          *QueueSummaryResponse    `json:"queue,omitempty"`
	Whatsapp       *WhatsappSummaryResponse `json:"whatsapp,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// TicketListResponse is one page of tickets plus paging metadata.
type TicketListResponse struct {
	Tickets []TicketSummary `json:"tickets"`
	Count   int             `json:"count"`
	HasMore bool            `json:"has_more"`
}

// MessageResponse represents a thread entry.
type MessageResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	Body      string    `json:"body"`
	FromMe    bool      `json:"from_me"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadBadgeResponse carries the unread total for the acting agent.
type UnreadBadgeResponse struct {
	Unread int `json:"unread"`
}

// QueueResponse full queue record.
type QueueResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
