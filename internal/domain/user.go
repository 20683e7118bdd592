package domain

import "time"

// User is an end-user reaching support through one of the chat sources.
// Identity is keyed by the external Telegram id; users are created on first
// contact and never hard-deleted.
type User struct {
	ID           string
	TelegramID   int64
	Username     *string
	FirstName    *string
	LastName     *string
	LanguageCode *string
	Balance      float64
	DealsCount   int
	IsBlocked    bool
	IsVerified   bool
	Flags        []string
	LastActivity *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the best human-readable name for the user.
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		if u.LastName != nil && *u.LastName != "" {
			return *u.FirstName + " " + *u.LastName
		}
		return *u.FirstName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "user"
}
