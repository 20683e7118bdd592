package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// ChatSummary response.
type ChatSummary struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id"`
	OperatorID         *string             `json:"operator_id"`
	Status             domain.ChatStatus   `json:"status"`
	Priority           domain.ChatPriority `json:"priority"`
	Source             domain.ChatSource   `json:"source"`
	Tags               []string            `json:"tags"`
	EscalationReason   *string             `json:"escalation_reason,omitempty"`
	FirstOperatorReply *time.Time          `json:"first_operator_reply_at,omitempty"`
	ClosedAt           *time.Time          `json:"closed_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// ChatSearchItem pairs a chat with matched listing context.
type ChatSearchItem struct {
	Chat            ChatSummary `json:"chat"`
	UserName        string      `json:"user_name"`
	LastMessageText string      `json:"last_message_text"`
}

// EscalateChatRequest payload.
type EscalateChatRequest struct {
	Reason string `json:"reason"`
}

// UpdateChatRequest payload, all fields optional.
type UpdateChatRequest struct {
	Priority *domain.ChatPriority `json:"priority"`
	Tags     []string             `json:"tags"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.ChatPriority `json:"priority"`
}

// AddTagsRequest payload.
type AddTagsRequest struct {
	Tags []string `json:"tags"`
}

// StatsResponse is the console metrics shape.
type StatsResponse struct {
	Total            int64    `json:"total"`
	Waiting          int64    `json:"waiting"`
	InProgress       int64    `json:"in_progress"`
	Closed           int64    `json:"closed"`
	Escalated        int64    `json:"escalated"`
	AvgFirstReplySec *float64 `json:"avg_first_reply_seconds"`
	AvgResolutionSec *float64 `json:"avg_resolution_seconds"`
}
