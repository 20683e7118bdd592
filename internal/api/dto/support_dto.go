package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// NoteRequest payload.
type NoteRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// NoteResponse shape.
type NoteResponse struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chat_id"`
	OperatorID string    `json:"operator_id"`
	Body       string    `json:"body"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OpenCaseRequest payload.
type OpenCaseRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.ChatPriority `json:"priority"`
}

// UpdateCaseStatusRequest payload.
type UpdateCaseStatusRequest struct {
	Status domain.CaseStatus `json:"status"`
}

// CaseResponse shape.
type CaseResponse struct {
	ID          string              `json:"id"`
	ChatID      string              `json:"chat_id"`
	OpenedBy    string              `json:"opened_by"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.CaseStatus   `json:"status"`
	Priority    domain.ChatPriority `json:"priority"`
	ResolvedAt  *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CannedResponseRequest payload.
type CannedResponseRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	IsActive *bool  `json:"is_active"`
}

// CannedResponseItem shape.
type CannedResponseItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Category   string    `json:"category"`
	UsageCount int       `json:"usage_count"`
	CreatedBy  string    `json:"created_by"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	MessageID *string   `json:"message_id,omitempty"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
