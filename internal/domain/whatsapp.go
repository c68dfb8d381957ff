package domain

import "time"

// Whatsapp is a connected WhatsApp session tickets arrive through.
type Whatsapp struct {
	ID        int64
	Name      string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
