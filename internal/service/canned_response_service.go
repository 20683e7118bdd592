package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// CannedResponseService manages reusable reply templates.
type CannedResponseService struct {
	responses repository.CannedResponseRepository
}

// NewCannedResponseService builds the service.
func NewCannedResponseService(responses repository.CannedResponseRepository) *CannedResponseService {
	return &CannedResponseService{responses: responses}
}

// Create adds a template.
func (s *CannedResponseService) Create(ctx context.Context, title, body, category, operatorID string) (*domain.CannedResponse, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, apperrors.NewValidationError("title and body required", nil)
	}

	cr := &domain.CannedResponse{
		Title:     title,
		Body:      body,
		Category:  strings.TrimSpace(category),
		CreatedBy: operatorID,
		IsActive:  true,
	}
	if err := s.responses.Create(ctx, cr); err != nil {
		return nil, apperrors.MapError(err)
	}
	return cr, nil
}

// List returns templates matching the filter, most used first.
func (s *CannedResponseService) List(ctx context.Context, filter repository.CannedResponseFilter) ([]domain.CannedResponse, error) {
	responses, err := s.responses.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return responses, nil
}

// Get fetches one template.
func (s *CannedResponseService) Get(ctx context.Context, id string) (*domain.CannedResponse, error) {
	cr, err := s.responses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("canned response", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return cr, nil
}

// Update edits a template.
func (s *CannedResponseService) Update(ctx context.Context, id, title, body, category string, active bool) (*domain.CannedResponse, error) {
	cr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, apperrors.NewValidationError("title and body required", nil)
	}
	cr.Title = title
	cr.Body = body
	cr.Category = strings.TrimSpace(category)
	cr.IsActive = active
	if err := s.responses.Update(ctx, cr); err != nil {
		return nil, apperrors.MapError(err)
	}
	return cr, nil
}

// Delete removes a template.
func (s *CannedResponseService) Delete(ctx context.Context, id string) error {
	if err := s.responses.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("canned response", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Use returns the template body and bumps its usage counter by one.
func (s *CannedResponseService) Use(ctx context.Context, id string) (*domain.CannedResponse, error) {
	cr, err := s.responses.IncrementUsage(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("canned response", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return cr, nil
}
