package domain

import "time"

// Queue is a routing bucket tickets are assigned to. It is the primary
// access-control boundary for ticket visibility.
type Queue struct {
	ID        int64
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
