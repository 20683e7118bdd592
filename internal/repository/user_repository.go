package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// UserProfile carries the optional profile fields delivered with a Telegram
// update. Nil fields are left untouched on upsert.
type UserProfile struct {
	Username     *string
	FirstName    *string
	LastName     *string
	LanguageCode *string
}

// UserFilter defines query params for user listing.
type UserFilter struct {
	IsBlocked  *bool
	IsVerified *bool
	Flag       *string
	Limit      int
	Offset     int
}

// UserRepository defines persistence access for end-users.
type UserRepository interface {
	Upsert(ctx context.Context, telegramID int64, profile UserProfile) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	TouchActivity(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, telegram_id, username, first_name, last_name, language_code,
       balance, deals_count, is_blocked, is_verified, flags, last_activity_at, created_at, updated_at`

// Upsert inserts the user or refreshes provided profile fields in a single
// statement, so concurrent first-contact webhooks converge on one row.
func (r *userRepository) Upsert(ctx context.Context, telegramID int64, profile UserProfile) (*domain.User, error) {
	query := `
        INSERT INTO users (telegram_id, username, first_name, last_name, language_code)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (telegram_id) DO UPDATE SET
            username      = COALESCE(EXCLUDED.username, users.username),
            first_name    = COALESCE(EXCLUDED.first_name, users.first_name),
            last_name     = COALESCE(EXCLUDED.last_name, users.last_name),
            language_code = COALESCE(EXCLUDED.language_code, users.language_code),
            updated_at    = NOW()
        RETURNING ` + userColumns

	return r.scanOne(r.pool.QueryRow(ctx, query,
		telegramID,
		profile.Username,
		profile.FirstName,
		profile.LastName,
		profile.LanguageCode,
	))
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, first_name=$2, last_name=$3, language_code=$4,
            balance=$5, deals_count=$6, is_blocked=$7, is_verified=$8, flags=$9, updated_at=NOW()
        WHERE id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
		user.Balance,
		user.DealsCount,
		user.IsBlocked,
		user.IsVerified,
		user.Flags,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) TouchActivity(ctx context.Context, id string) error {
	const query = `UPDATE users SET last_activity_at=NOW(), updated_at=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, telegramID))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	clauses := []string{}

	if filter.IsBlocked != nil {
		args = append(args, *filter.IsBlocked)
		clauses = append(clauses, fmt.Sprintf("is_blocked=$%d", len(args)))
	}
	if filter.IsVerified != nil {
		args = append(args, *filter.IsVerified)
		clauses = append(clauses, fmt.Sprintf("is_verified=$%d", len(args)))
	}
	if filter.Flag != nil {
		args = append(args, *filter.Flag)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(flags)", len(args)))
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

	var result []domain.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.LanguageCode,
		&user.Balance,
		&user.DealsCount,
		&user.IsBlocked,
		&user.IsVerified,
		&user.Flags,
		&user.LastActivity,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
