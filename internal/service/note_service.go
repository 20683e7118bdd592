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

// NoteService manages operator annotations on chats.
type NoteService struct {
	notes repository.NoteRepository
	chats repository.ChatRepository
}

// NewNoteService builds the service.
func NewNoteService(notes repository.NoteRepository, chats repository.ChatRepository) *NoteService {
	return &NoteService{notes: notes, chats: chats}
}

// CreateNote attaches an annotation to a chat.
func (s *NoteService) CreateNote(ctx context.Context, chatID, operatorID, body string, internal bool) (*domain.Note, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("note body required", nil)
	}
	if _, err := s.chats.GetByID(ctx, chatID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chat", map[string]any{"chat_id": chatID})
		}
		return nil, apperrors.MapError(err)
	}

	note := &domain.Note{
		ChatID:     chatID,
		OperatorID: operatorID,
		Body:       body,
		IsInternal: internal,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	return note, nil
}

// ListByChat returns all notes for a chat in creation order.
func (s *NoteService) ListByChat(ctx context.Context, chatID string) ([]domain.Note, error) {
	notes, err := s.notes.ListByChat(ctx, chatID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notes, nil
}

// UpdateNote edits a note. Only the authoring operator may edit.
func (s *NoteService) UpdateNote(ctx context.Context, noteID, operatorID, body string, internal bool) (*domain.Note, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("note body required", nil)
	}
	note, err := s.loadNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.OperatorID != operatorID {
		return nil, apperrors.NewForbidden("note authored by another operator")
	}
	note.Body = body
	note.IsInternal = internal
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	return note, nil
}

// DeleteNote removes a note. The author or a supervisor/admin may delete.
func (s *NoteService) DeleteNote(ctx context.Context, noteID, operatorID string, role domain.OperatorRole) error {
	note, err := s.loadNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.OperatorID != operatorID && role != domain.OperatorRoleSupervisor && role != domain.OperatorRoleAdmin {
		return apperrors.NewForbidden("note authored by another operator")
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *NoteService) loadNote(ctx context.Context, noteID string) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("note", map[string]any{"note_id": noteID})
		}
		return nil, apperrors.MapError(err)
	}
	return note, nil
}
