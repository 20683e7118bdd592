package domain

import "time"

// MessageAuthorType indicates who authored a message.
type MessageAuthorType string

const (
	AuthorTypeUser     MessageAuthorType = "USER"
	AuthorTypeOperator MessageAuthorType = "OPERATOR"
	AuthorTypeBot      MessageAuthorType = "BOT"
)

// Message is an append-only record in a chat thread. Messages are updated
// only for Telegram edit propagation and read-flag flips.
type Message struct {
	ID                string
	ChatID            string
	AuthorType        MessageAuthorType
	AuthorID          *string
	TelegramMessageID *int64
	Text              string
	MediaType         *string
	MediaFileID       *string
	IsRead            bool
	EditedAt          *time.Time
	CreatedAt         time.Time
}
