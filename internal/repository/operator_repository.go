package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// OperatorFilter defines query params for operator listing.
type OperatorFilter struct {
	Role     *domain.OperatorRole
	IsActive *bool
	Limit    int
	Offset   int
}

// OperatorRepository handles persistence for support operators.
type OperatorRepository interface {
	Create(ctx context.Context, operator *domain.Operator) error
	Update(ctx context.Context, operator *domain.Operator) error
	GetByID(ctx context.Context, id string) (*domain.Operator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
	List(ctx context.Context, filter OperatorFilter) ([]domain.Operator, error)
	FindAvailable(ctx context.Context) ([]domain.OperatorLoad, error)
	FindLeastLoaded(ctx context.Context) (*domain.OperatorLoad, error)
	TouchLastLogin(ctx context.Context, id string) error
}

type operatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository instantiates the repository.
func NewOperatorRepository(pool *pgxpool.Pool) OperatorRepository {
	return &operatorRepository{pool: pool}
}

const operatorColumns = `id, name, email, password_hash, role, is_active, max_chats, last_login_at, created_at, updated_at`

func (r *operatorRepository) Create(ctx context.Context, operator *domain.Operator) error {
	const query = `
        INSERT INTO operators (name, email, password_hash, role, is_active, max_chats)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		operator.Name,
		operator.Email,
		operator.PasswordHash,
		operator.Role,
		operator.IsActive,
		operator.MaxChats,
	).Scan(&operator.ID, &operator.CreatedAt, &operator.UpdatedAt)
}

func (r *operatorRepository) Update(ctx context.Context, operator *domain.Operator) error {
	const query = `
        UPDATE operators
        SET name=$1, email=$2, password_hash=$3, role=$4, is_active=$5, max_chats=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		operator.Name,
		operator.Email,
		operator.PasswordHash,
		operator.Role,
		operator.IsActive,
		operator.MaxChats,
		operator.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *operatorRepository) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *operatorRepository) List(ctx context.Context, filter OperatorFilter) ([]domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
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

	var result []domain.Operator
	for rows.Next() {
		operator, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *operator)
	}
	return result, rows.Err()
}

const operatorLoadQuery = `
        SELECT o.id, o.name, o.email, o.password_hash, o.role, o.is_active, o.max_chats,
               o.last_login_at, o.created_at, o.updated_at,
               COUNT(c.id) AS chat_count
        FROM operators o
        LEFT JOIN chats c ON c.operator_id = o.id AND c.status = 'IN_PROGRESS'
        WHERE o.is_active
        GROUP BY o.id`

// FindAvailable returns active operators with spare capacity, least loaded
// first. Load is recomputed per call; no cached counter is maintained.
func (r *operatorRepository) FindAvailable(ctx context.Context) ([]domain.OperatorLoad, error) {
	query := operatorLoadQuery + `
        HAVING COUNT(c.id) < o.max_chats
        ORDER BY chat_count ASC, o.created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OperatorLoad
	for rows.Next() {
		load, err := scanOperatorLoad(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *load)
	}
	return result, rows.Err()
}

// FindLeastLoaded returns the active operator with the fewest IN_PROGRESS chats.
func (r *operatorRepository) FindLeastLoaded(ctx context.Context) (*domain.OperatorLoad, error) {
	query := operatorLoadQuery + `
        ORDER BY chat_count ASC, o.created_at ASC
        LIMIT 1`
	return scanOperatorLoad(r.pool.QueryRow(ctx, query))
}

func (r *operatorRepository) TouchLastLogin(ctx context.Context, id string) error {
	const query = `UPDATE operators SET last_login_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *operatorRepository) scanOne(row pgx.Row) (*domain.Operator, error) {
	var operator domain.Operator
	if err := row.Scan(
		&operator.ID,
		&operator.Name,
		&operator.Email,
		&operator.PasswordHash,
		&operator.Role,
		&operator.IsActive,
		&operator.MaxChats,
		&operator.LastLoginAt,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &operator, nil
}

func scanOperatorLoad(row pgx.Row) (*domain.OperatorLoad, error) {
	var load domain.OperatorLoad
	if err := row.Scan(
		&load.Operator.ID,
		&load.Operator.Name,
		&load.Operator.Email,
		&load.Operator.PasswordHash,
		&load.Operator.Role,
		&load.Operator.IsActive,
		&load.Operator.MaxChats,
		&load.Operator.LastLoginAt,
		&load.Operator.CreatedAt,
		&load.Operator.UpdatedAt,
		&load.ChatCount,
	); err != nil {
		return nil, err
	}
	return &load, nil
}
