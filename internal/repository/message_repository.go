package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// MessageRepository manages chat thread messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListByChat(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error)
	LastByChat(ctx context.Context, chatID string) (*domain.Message, error)
	ListUnreadByChat(ctx context.Context, chatID string) ([]domain.Message, error)
	CountUnreadByChat(ctx context.Context, chatID string) (int, error)
	MarkReadByChat(ctx context.Context, chatID string) (int64, error)
	ApplyTelegramEdit(ctx context.Context, chatID string, telegramMessageID int64, text string) (*domain.Message, error)
	Delete(ctx context.Context, id string) error
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageColumns = `id, chat_id, author_type, author_id, telegram_message_id, text,
       media_type, media_file_id, is_read, edited_at, created_at`

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (chat_id, author_type, author_id, telegram_message_id, text, media_type, media_file_id, is_read)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.ChatID,
		msg.AuthorType,
		msg.AuthorID,
		msg.TelegramMessageID,
		msg.Text,
		msg.MediaType,
		msg.MediaFileID,
		msg.IsRead,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT `+messageColumns+` FROM messages
        WHERE chat_id=$1 ORDER BY created_at ASC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *messageRepository) LastByChat(ctx context.Context, chatID string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE chat_id=$1 ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID))
}

func (r *messageRepository) ListUnreadByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE chat_id=$1 AND NOT is_read AND author_type='USER'
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *messageRepository) CountUnreadByChat(ctx context.Context, chatID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE chat_id=$1 AND NOT is_read AND author_type='USER'`
	var count int
	if err := r.pool.QueryRow(ctx, query, chatID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkReadByChat flips the read flag for all unread user messages at once.
func (r *messageRepository) MarkReadByChat(ctx context.Context, chatID string) (int64, error) {
	const query = `UPDATE messages SET is_read=TRUE WHERE chat_id=$1 AND NOT is_read AND author_type='USER'`
	cmd, err := r.pool.Exec(ctx, query, chatID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ApplyTelegramEdit propagates an edited Telegram message into the thread.
func (r *messageRepository) ApplyTelegramEdit(ctx context.Context, chatID string, telegramMessageID int64, text string) (*domain.Message, error) {
	query := `
        UPDATE messages SET text=$3, edited_at=NOW()
        WHERE chat_id=$1 AND telegram_message_id=$2
        RETURNING ` + messageColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID, telegramMessageID, text))
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM messages WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *messageRepository) scanOne(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	if err := row.Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.AuthorType,
		&msg.AuthorID,
		&msg.TelegramMessageID,
		&msg.Text,
		&msg.MediaType,
		&msg.MediaFileID,
		&msg.IsRead,
		&msg.EditedAt,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) scanMany(rows pgx.Rows) ([]domain.Message, error) {
	var result []domain.Message
	for rows.Next() {
		msg, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}
