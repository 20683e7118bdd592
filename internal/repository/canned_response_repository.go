package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// CannedResponseFilter defines query params for template listing.
type CannedResponseFilter struct {
	Category *string
	IsActive *bool
	Limit    int
	Offset   int
}

// CannedResponseRepository persists reply templates.
type CannedResponseRepository interface {
	Create(ctx context.Context, cr *domain.CannedResponse) error
	GetByID(ctx context.Context, id string) (*domain.CannedResponse, error)
	List(ctx context.Context, filter CannedResponseFilter) ([]domain.CannedResponse, error)
	Update(ctx context.Context, cr *domain.CannedResponse) error
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, id string) (*domain.CannedResponse, error)
}

type cannedResponseRepository struct {
	pool *pgxpool.Pool
}

// NewCannedResponseRepository constructs repository.
func NewCannedResponseRepository(pool *pgxpool.Pool) CannedResponseRepository {
	return &cannedResponseRepository{pool: pool}
}

const cannedColumns = `id, title, body, category, usage_count, created_by, is_active, created_at, updated_at`

func (r *cannedResponseRepository) Create(ctx context.Context, cr *domain.CannedResponse) error {
	const query = `
        INSERT INTO canned_responses (title, body, category, created_by, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, usage_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cr.Title,
		cr.Body,
		cr.Category,
		cr.CreatedBy,
		cr.IsActive,
	).Scan(&cr.ID, &cr.UsageCount, &cr.CreatedAt, &cr.UpdatedAt)
}

func (r *cannedResponseRepository) GetByID(ctx context.Context, id string) (*domain.CannedResponse, error) {
	query := `SELECT ` + cannedColumns + ` FROM canned_responses WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *cannedResponseRepository) List(ctx context.Context, filter CannedResponseFilter) ([]domain.CannedResponse, error) {
	query := `SELECT ` + cannedColumns + ` FROM canned_responses`
	args := []any{}
	clauses := []string{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY usage_count DESC, title ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CannedResponse
	for rows.Next() {
		cr, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cr)
	}
	return result, rows.Err()
}

func (r *cannedResponseRepository) Update(ctx context.Context, cr *domain.CannedResponse) error {
	const query = `
        UPDATE canned_responses SET title=$1, body=$2, category=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query, cr.Title, cr.Body, cr.Category, cr.IsActive, cr.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cannedResponseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM canned_responses WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementUsage bumps the counter atomically.
func (r *cannedResponseRepository) IncrementUsage(ctx context.Context, id string) (*domain.CannedResponse, error) {
	query := `
        UPDATE canned_responses SET usage_count = usage_count + 1, updated_at=NOW()
        WHERE id=$1
        RETURNING ` + cannedColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *cannedResponseRepository) scanOne(row pgx.Row) (*domain.CannedResponse, error) {
	var cr domain.CannedResponse
	if err := row.Scan(
		&cr.ID,
		&cr.Title,
		&cr.Body,
		&cr.Category,
		&cr.UsageCount,
		&cr.CreatedBy,
		&cr.IsActive,
		&cr.CreatedAt,
		&cr.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cr, nil
}
