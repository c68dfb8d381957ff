package dto

import (
	"time"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Profile  domain.Profile `json:"profile"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserSummary response.
type UserSummary struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Profile  domain.Profile `json:"profile"`
	QueueIDs []int64        `json:"queue_ids"`
}

// AuthResponse wraps a login/registration result.
type AuthResponse struct {
	User      UserSummary `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}
