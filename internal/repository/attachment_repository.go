package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// AttachmentRepository persists attachment metadata rows.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	ListByChat(ctx context.Context, chatID string) ([]domain.Attachment, error)
	ListByMessage(ctx context.Context, messageID string) ([]domain.Attachment, error)
	ListAllPaths(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeleteByChat(ctx context.Context, chatID string) ([]string, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

const attachmentColumns = `id, chat_id, message_id, file_name, file_path, mime_type, size_bytes, uploaded_by, created_at`

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (chat_id, message_id, file_name, file_path, mime_type, size_bytes, uploaded_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.ChatID,
		attachment.MessageID,
		attachment.FileName,
		attachment.FilePath,
		attachment.MimeType,
		attachment.SizeBytes,
		attachment.UploadedBy,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *attachmentRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE chat_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, chatID)
}

func (r *attachmentRepository) ListByMessage(ctx context.Context, messageID string) ([]domain.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE message_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, messageID)
}

// ListAllPaths returns every stored file path, for orphan cleanup.
func (r *attachmentRepository) ListAllPaths(ctx context.Context) ([]string, error) {
	const query = `SELECT file_path FROM attachments`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM attachments WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteByChat removes all rows for a chat and returns their file paths so
// the caller can remove the physical files.
func (r *attachmentRepository) DeleteByChat(ctx context.Context, chatID string) ([]string, error) {
	const query = `DELETE FROM attachments WHERE chat_id=$1 RETURNING file_path`
	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

func (r *attachmentRepository) list(ctx context.Context, query string, arg any) ([]domain.Attachment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		attachment, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *attachment)
	}
	return result, rows.Err()
}

func (r *attachmentRepository) scanOne(row pgx.Row) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := row.Scan(
		&attachment.ID,
		&attachment.ChatID,
		&attachment.MessageID,
		&attachment.FileName,
		&attachment.FilePath,
		&attachment.MimeType,
		&attachment.SizeBytes,
		&attachment.UploadedBy,
		&attachment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &attachment, nil
}
