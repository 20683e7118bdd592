package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// CreateMessageRequest payload for operator replies.
type CreateMessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse represents one thread message.
type MessageResponse struct {
	ID                string                   `json:"id"`
	ChatID            string                   `json:"chat_id"`
	AuthorType        domain.MessageAuthorType `json:"author_type"`
	AuthorID          *string                  `json:"author_id"`
	TelegramMessageID *int64                   `json:"telegram_message_id,omitempty"`
	Text              string                   `json:"text"`
	MediaType         *string                  `json:"media_type,omitempty"`
	MediaFileID       *string                  `json:"media_file_id,omitempty"`
	IsRead            bool                     `json:"is_read"`
	EditedAt          *time.Time               `json:"edited_at,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}
