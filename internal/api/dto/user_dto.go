package dto

import "time"

// UserResponse is the public end-user shape.
type UserResponse struct {
	ID           string     `json:"id"`
	TelegramID   int64      `json:"telegram_id"`
	Username     *string    `json:"username"`
	FirstName    *string    `json:"first_name"`
	LastName     *string    `json:"last_name"`
	LanguageCode *string    `json:"language_code"`
	Balance      float64    `json:"balance"`
	DealsCount   int        `json:"deals_count"`
	IsBlocked    bool       `json:"is_blocked"`
	IsVerified   bool       `json:"is_verified"`
	Flags        []string   `json:"flags"`
	LastActivity *time.Time `json:"last_activity_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SetBlockedRequest payload.
type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

// SetVerifiedRequest payload.
type SetVerifiedRequest struct {
	Verified bool `json:"verified"`
}
