package domain

import "time"

// Profile represents the privilege level of an agent.
type Profile string

const (
	ProfileUser       Profile = "user"
	ProfileAdmin      Profile = "admin"
	ProfileSuperAdmin Profile = "superadmin"
)

// User is the domain model for agents who handle tickets.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Profile      Profile
	QueueIDs     []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
