package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// NoteRepository persists operator annotations on chats.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	ListByChat(ctx context.Context, chatID string) ([]domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository constructs repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

const noteColumns = `id, chat_id, operator_id, body, is_internal, created_at, updated_at`

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	const query = `
        INSERT INTO notes (chat_id, operator_id, body, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		note.ChatID,
		note.OperatorID,
		note.Body,
		note.IsInternal,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *noteRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE chat_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Note
	for rows.Next() {
		note, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *note)
	}
	return result, rows.Err()
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	const query = `UPDATE notes SET body=$1, is_internal=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, note.Body, note.IsInternal, note.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notes WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *noteRepository) scanOne(row pgx.Row) (*domain.Note, error) {
	var note domain.Note
	if err := row.Scan(
		&note.ID,
		&note.ChatID,
		&note.OperatorID,
		&note.Body,
		&note.IsInternal,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &note, nil
}
