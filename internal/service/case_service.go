package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// CaseService tracks issues derived from chats with a lifecycle independent
// of the parent chat.
type CaseService struct {
	cases repository.CaseRepository
	chats repository.ChatRepository
}

// NewCaseService builds the service.
func NewCaseService(cases repository.CaseRepository, chats repository.ChatRepository) *CaseService {
	return &CaseService{cases: cases, chats: chats}
}

// OpenCase creates a case for a chat.
func (s *CaseService) OpenCase(ctx context.Context, chatID, operatorID, title, description string, priority domain.ChatPriority) (*domain.Case, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("case title required", nil)
	}
	if _, err := s.chats.GetByID(ctx, chatID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chat", map[string]any{"chat_id": chatID})
		}
		return nil, apperrors.MapError(err)
	}
	if priority == "" {
		priority = domain.ChatPriorityMedium
	}

	c := &domain.Case{
		ChatID:      chatID,
		OpenedBy:    operatorID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      domain.CaseStatusOpen,
		Priority:    priority,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

// UpdateStatus moves the case through its lifecycle, rejecting invalid jumps.
func (s *CaseService) UpdateStatus(ctx context.Context, caseID string, newStatus domain.CaseStatus) (*domain.Case, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(newStatus) {
		return nil, apperrors.NewConflict("invalid case status transition", map[string]any{
			"from": c.Status,
			"to":   newStatus,
		})
	}

	c.Status = newStatus
	if newStatus == domain.CaseStatusResolved {
		now := time.Now()
		c.ResolvedAt = &now
	} else if newStatus != domain.CaseStatusClosed {
		c.ResolvedAt = nil
	}
	if err := s.cases.Update(ctx, c); err != nil {
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

// GetCase fetches one case.
func (s *CaseService) GetCase(ctx context.Context, caseID string) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

// ListByChat returns all cases derived from a chat.
func (s *CaseService) ListByChat(ctx context.Context, chatID string) ([]domain.Case, error) {
	cases, err := s.cases.ListByChat(ctx, chatID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return cases, nil
}
