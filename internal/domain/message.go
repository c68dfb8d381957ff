package domain

import "time"

// Message captures one entry in a ticket conversation thread.
type Message struct {
	ID        int64
	TicketID  int64
	Body      string
	FromMe    bool
	Read      bool
	CreatedAt time.Time
}
