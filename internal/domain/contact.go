package domain

import "time"

// Contact models a customer reachable over WhatsApp.
type Contact struct {
	ID            int64
	Name          string
	Number        string
	ProfilePicURL string
	IsGroup       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
