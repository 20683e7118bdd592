package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	Operator     OperatorResponse `json:"operator"`
}

// OperatorResponse is the public operator shape.
type OperatorResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Role        domain.OperatorRole `json:"role"`
	IsActive    bool                `json:"is_active"`
	MaxChats    int                 `json:"max_chats"`
	LastLoginAt *time.Time          `json:"last_login_at"`
	CreatedAt   time.Time           `json:"created_at"`
}

// OperatorLoadResponse adds the live chat count.
type OperatorLoadResponse struct {
	OperatorResponse
	ChatCount int `json:"chat_count"`
}

// CreateOperatorRequest payload (admin surface).
type CreateOperatorRequest struct {
	Name     string              `json:"name"`
	Email    string              `json:"email"`
	Password string              `json:"password"`
	Role     domain.OperatorRole `json:"role"`
	MaxChats int                 `json:"max_chats"`
}
