package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-console/internal/domain"
)

// ChatFilter captures listing parameters for the operator console.
type ChatFilter struct {
	UserID     *string
	OperatorID *string
	Statuses   []domain.ChatStatus
	Sources    []domain.ChatSource
	Priorities []domain.ChatPriority
	Limit      int
	Offset     int
}

// ChatStats aggregates console metrics computed at read time.
type ChatStats struct {
	Total              int64
	Waiting            int64
	InProgress         int64
	Closed             int64
	Escalated          int64
	AvgFirstReplySec   *float64
	AvgResolutionSec   *float64
}

// ChatRepository encapsulates chat persistence.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Chat, error)
	ListWithFilter(ctx context.Context, filter ChatFilter) ([]domain.Chat, error)
	CountByOperatorAndStatus(ctx context.Context, operatorID string, status domain.ChatStatus) (int, error)
	TakeChat(ctx context.Context, chatID, operatorID string) (*domain.Chat, error)
	Close(ctx context.Context, chatID string) (*domain.Chat, error)
	Escalate(ctx context.Context, chatID, reason string) (*domain.Chat, error)
	UpdatePriority(ctx context.Context, chatID string, priority domain.ChatPriority) (*domain.Chat, error)
	AddTags(ctx context.Context, chatID string, tags []string) (*domain.Chat, error)
	TouchActivity(ctx context.Context, chatID string) error
	SetFirstOperatorReply(ctx context.Context, chatID string) error
	Stats(ctx context.Context) (*ChatStats, error)
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository instantiates repository.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

const chatColumns = `id, user_id, operator_id, status, priority, source, tags,
       escalation_reason, first_operator_reply_at, closed_at, created_at, updated_at`

func (r *chatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	const query = `
        INSERT INTO chats (user_id, operator_id, status, priority, source, tags, escalation_reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		chat.UserID,
		chat.OperatorID,
		chat.Status,
		chat.Priority,
		chat.Source,
		chat.Tags,
		chat.EscalationReason,
	).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetActiveByUser returns the user's most recently updated non-closed chat.
func (r *chatRepository) GetActiveByUser(ctx context.Context, userID string) (*domain.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats
        WHERE user_id=$1 AND status <> 'CLOSED'
        ORDER BY updated_at DESC LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, userID))
}

func (r *chatRepository) ListWithFilter(ctx context.Context, filter ChatFilter) ([]domain.Chat, error) {
	base := `SELECT ` + chatColumns + ` FROM chats`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.OperatorID != nil {
		args = append(args, *filter.OperatorID)
		clauses = append(clauses, fmt.Sprintf("operator_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Sources) > 0 {
		placeholders := make([]string, len(filter.Sources))
		for i, source := range filter.Sources {
			args = append(args, source)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("source IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Chat
	for rows.Next() {
		chat, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *chat)
	}
	return result, rows.Err()
}

func (r *chatRepository) CountByOperatorAndStatus(ctx context.Context, operatorID string, status domain.ChatStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM chats WHERE operator_id=$1 AND status=$2`
	var count int
	if err := r.pool.QueryRow(ctx, query, operatorID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// TakeChat assigns a waiting chat to the operator in a single conditional
// UPDATE. The WHERE clause re-checks the WAITING status and the operator's
// remaining capacity, so racing takes cannot double-assign a chat or push an
// operator past max_chats. Zero rows means already taken or over capacity.
func (r *chatRepository) TakeChat(ctx context.Context, chatID, operatorID string) (*domain.Chat, error) {
	query := `
        UPDATE chats SET operator_id=$1, status='IN_PROGRESS', updated_at=NOW()
        WHERE id=$2 AND status='WAITING'
          AND (SELECT COUNT(*) FROM chats c WHERE c.operator_id=$1 AND c.status='IN_PROGRESS')
              < (SELECT o.max_chats FROM operators o WHERE o.id=$1 AND o.is_active)
        RETURNING ` + chatColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, operatorID, chatID))
}

func (r *chatRepository) Close(ctx context.Context, chatID string) (*domain.Chat, error) {
	query := `
        UPDATE chats SET status='CLOSED', closed_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND status <> 'CLOSED'
        RETURNING ` + chatColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID))
}

// Escalate flags the chat for human attention: tag, reason, requeue to
// WAITING, raise priority to at least HIGH. The assignee is never changed.
func (r *chatRepository) Escalate(ctx context.Context, chatID, reason string) (*domain.Chat, error) {
	query := `
        UPDATE chats SET
            status='WAITING',
            escalation_reason=$2,
            tags = array_append(tags, $3),
            priority = CASE WHEN priority IN ('LOW','MEDIUM') THEN 'HIGH' ELSE priority END,
            updated_at=NOW()
        WHERE id=$1
        RETURNING ` + chatColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID, reason, domain.EscalationTagPrefix+reason))
}

func (r *chatRepository) UpdatePriority(ctx context.Context, chatID string, priority domain.ChatPriority) (*domain.Chat, error) {
	query := `
        UPDATE chats SET priority=$2, updated_at=NOW()
        WHERE id=$1
        RETURNING ` + chatColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID, priority))
}

func (r *chatRepository) AddTags(ctx context.Context, chatID string, tags []string) (*domain.Chat, error) {
	query := `
        UPDATE chats SET tags = (
            SELECT ARRAY(SELECT DISTINCT unnest(tags || $2::text[]))
        ), updated_at=NOW()
        WHERE id=$1
        RETURNING ` + chatColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID, tags))
}

func (r *chatRepository) TouchActivity(ctx context.Context, chatID string) error {
	const query = `UPDATE chats SET updated_at=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, chatID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetFirstOperatorReply stamps the first-response time once.
func (r *chatRepository) SetFirstOperatorReply(ctx context.Context, chatID string) error {
	const query = `
        UPDATE chats SET first_operator_reply_at=NOW()
        WHERE id=$1 AND first_operator_reply_at IS NULL`
	_, err := r.pool.Exec(ctx, query, chatID)
	return err
}

// Stats computes aggregate counts and latency averages. First-reply latency
// uses a correlated subquery over messages rather than the stamped column so
// chats predating the column still count.
func (r *chatRepository) Stats(ctx context.Context) (*ChatStats, error) {
	const query = `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status='WAITING'),
            COUNT(*) FILTER (WHERE status='IN_PROGRESS'),
            COUNT(*) FILTER (WHERE status='CLOSED'),
            COUNT(*) FILTER (WHERE escalation_reason IS NOT NULL),
            AVG(EXTRACT(EPOCH FROM (
                (SELECT MIN(m.created_at) FROM messages m
                 WHERE m.chat_id=c.id AND m.author_type='OPERATOR') - c.created_at
            ))),
            AVG(EXTRACT(EPOCH FROM (c.closed_at - c.created_at)))
        FROM chats c`

	var stats ChatStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Waiting,
		&stats.InProgress,
		&stats.Closed,
		&stats.Escalated,
		&stats.AvgFirstReplySec,
		&stats.AvgResolutionSec,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *chatRepository) scanOne(row pgx.Row) (*domain.Chat, error) {
	var chat domain.Chat
	if err := row.Scan(
		&chat.ID,
		&chat.UserID,
		&chat.OperatorID,
		&chat.Status,
		&chat.Priority,
		&chat.Source,
		&chat.Tags,
		&chat.EscalationReason,
		&chat.FirstOperatorReply,
		&chat.ClosedAt,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &chat, nil
}
