package domain

import "time"

// CaseStatus enumerates the case lifecycle, independent of the parent chat.
type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "OPEN"
	CaseStatusInReview CaseStatus = "IN_REVIEW"
	CaseStatusResolved CaseStatus = "RESOLVED"
	CaseStatusClosed   CaseStatus = "CLOSED"
)

// Case is a tracked issue derived from a chat.
type Case struct {
	ID          string
	ChatID      string
	OpenedBy    string
	Title       string
	Description string
	Status      CaseStatus
	Priority    ChatPriority
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var allowedCaseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusOpen:     {CaseStatusInReview, CaseStatusResolved, CaseStatusClosed},
	CaseStatusInReview: {CaseStatusOpen, CaseStatusResolved, CaseStatusClosed},
	CaseStatusResolved: {CaseStatusClosed, CaseStatusInReview},
	CaseStatusClosed:   {},
}

// CanTransitionTo reports whether the status change is allowed.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, candidate := range allowedCaseTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
