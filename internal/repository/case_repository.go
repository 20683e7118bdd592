package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// CaseRepository persists tracked issues derived from chats.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	ListByChat(ctx context.Context, chatID string) ([]domain.Case, error)
	Update(ctx context.Context, c *domain.Case) error
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository constructs repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseColumns = `id, chat_id, opened_by, title, description, status, priority, resolved_at, created_at, updated_at`

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (chat_id, opened_by, title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		c.ChatID,
		c.OpenedBy,
		c.Title,
		c.Description,
		c.Status,
		c.Priority,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *caseRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE chat_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Case
	for rows.Next() {
		c, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET title=$1, description=$2, status=$3, priority=$4, resolved_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		c.Title,
		c.Description,
		c.Status,
		c.Priority,
		c.ResolvedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepository) scanOne(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	if err := row.Scan(
		&c.ID,
		&c.ChatID,
		&c.OpenedBy,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.Priority,
		&c.ResolvedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
