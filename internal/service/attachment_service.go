package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/storage"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// AttachmentService keeps file metadata rows and physical files in sync:
// each attachments row owns exactly one file on disk.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	chats       repository.ChatRepository
	store       *storage.Store
}

// NewAttachmentService builds the service.
func NewAttachmentService(attachments repository.AttachmentRepository, chats repository.ChatRepository, store *storage.Store) *AttachmentService {
	return &AttachmentService{attachments: attachments, chats: chats, store: store}
}

// UploadInput describes an incoming file.
type UploadInput struct {
	ChatID     string
	MessageID  *string
	FileName   string
	MimeType   string
	UploadedBy *string
	Content    io.Reader
}

// Upload stores the file then records the metadata row. If the row insert
// fails the file is removed so no orphan is left behind.
func (s *AttachmentService) Upload(ctx context.Context, input UploadInput) (*domain.Attachment, error) {
	if strings.TrimSpace(input.FileName) == "" {
		return nil, apperrors.NewValidationError("file name required", nil)
	}
	if _, err := s.chats.GetByID(ctx, input.ChatID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chat", map[string]any{"chat_id": input.ChatID})
		}
		return nil, apperrors.MapError(err)
	}

	path, size, err := s.store.Save(input.FileName, input.Content)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store file", err)
	}

	attachment := &domain.Attachment{
		ChatID:     input.ChatID,
		MessageID:  input.MessageID,
		FileName:   input.FileName,
		FilePath:   path,
		MimeType:   input.MimeType,
		SizeBytes:  size,
		UploadedBy: input.UploadedBy,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		_ = s.store.Remove(path)
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// Get returns attachment metadata.
func (s *AttachmentService) Get(ctx context.Context, id string) (*domain.Attachment, error) {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("attachment", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// ListByChat returns all attachments for a chat.
func (s *AttachmentService) ListByChat(ctx context.Context, chatID string) ([]domain.Attachment, error) {
	attachments, err := s.attachments.ListByChat(ctx, chatID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

// Delete removes the row first, then the file. Row deletion is the source of
// truth; a file that fails to delete is picked up by CleanupOrphanedFiles.
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	attachment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return s.store.Remove(attachment.FilePath)
}

// DeleteByChat removes all attachment rows and files for a chat.
func (s *AttachmentService) DeleteByChat(ctx context.Context, chatID string) (int, error) {
	paths, err := s.attachments.DeleteByChat(ctx, chatID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	for _, path := range paths {
		_ = s.store.Remove(path)
	}
	return len(paths), nil
}

// CleanupOrphanedFiles removes files under the upload dir with no matching
// attachments row. Returns the number of files removed.
func (s *AttachmentService) CleanupOrphanedFiles(ctx context.Context) (int, error) {
	paths, err := s.attachments.ListAllPaths(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	known := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		known[path] = struct{}{}
	}
	removed, err := s.store.CleanupOrphans(known)
	if err != nil {
		return 0, apperrors.NewInternalError("orphan cleanup failed", err)
	}
	return removed, nil
}
