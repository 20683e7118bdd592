package domain

import "time"

// Note is a free-text annotation an operator attaches to a chat.
type Note struct {
	ID         string
	ChatID     string
	OperatorID string
	Body       string
	IsInternal bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
