package domain

import "time"

// CannedResponse is a reusable reply template with usage tracking.
type CannedResponse struct {
	ID         string
	Title      string
	Body       string
	Category   string
	UsageCount int
	CreatedBy  string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
