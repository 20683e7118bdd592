package events

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventChatCreated         EventType = "chat_created"
	EventChatTaken           EventType = "chat_taken"
	EventChatEscalated       EventType = "chat_escalated"
	EventChatClosed          EventType = "chat_closed"
	EventChatPriorityChanged EventType = "chat_priority_changed"
	EventMessageAdded        EventType = "message_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type       domain.MessageAuthorType `json:"type"`
	UserID     *string                  `json:"user_id,omitempty"`
	OperatorID *string                  `json:"operator_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChatID    string      `json:"chat_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ChatCreatedPayload payload.
type ChatCreatedPayload struct {
	UserID   string              `json:"user_id"`
	Source   domain.ChatSource   `json:"source"`
	Priority domain.ChatPriority `json:"priority"`
}

// ChatTakenPayload payload.
type ChatTakenPayload struct {
	OperatorID string `json:"operator_id"`
}

// ChatEscalatedPayload payload.
type ChatEscalatedPayload struct {
	Reason              string  `json:"reason"`
	SuggestedOperatorID *string `json:"suggested_operator_id,omitempty"`
}

// ChatClosedPayload payload.
type ChatClosedPayload struct {
	OperatorID string `json:"operator_id"`
}

// ChatPriorityChangedPayload payload.
type ChatPriorityChangedPayload struct {
	OldPriority domain.ChatPriority `json:"old_priority"`
	NewPriority domain.ChatPriority `json:"new_priority"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID   string                   `json:"message_id"`
	AuthorType  domain.MessageAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	TextPreview string                   `json:"text_preview"`
}
