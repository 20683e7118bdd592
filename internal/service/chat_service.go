package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// ChatService coordinates conversation workflows: creation, assignment,
// escalation and lifecycle transitions.
type ChatService struct {
	chats      repository.ChatRepository
	operators  repository.OperatorRepository
	messages   repository.MessageRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// ChatDependencies bundles repositories for the chat service.
type ChatDependencies struct {
	ChatRepo     repository.ChatRepository
	OperatorRepo repository.OperatorRepository
	MessageRepo  repository.MessageRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		chats:      deps.ChatRepo,
		operators:  deps.OperatorRepo,
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ChatSearchResult pairs a chat with the matched context shown in listings.
type ChatSearchResult struct {
	Chat            domain.Chat
	UserName        string
	LastMessageText string
}

// CreateChat opens a fresh WAITING conversation for the user.
func (s *ChatService) CreateChat(ctx context.Context, userID string, source domain.ChatSource) (*domain.Chat, error) {
	chat := &domain.Chat{
		UserID:   userID,
		Status:   domain.ChatStatusWaiting,
		Priority: domain.ChatPriorityMedium,
		Source:   source,
		Tags:     []string{},
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventChatCreated,
		ChatID: chat.ID,
		Actor:  userActor(userID),
		Payload: events.ChatCreatedPayload{
			UserID:   userID,
			Source:   source,
			Priority: chat.Priority,
		},
	})
	return chat, nil
}

// GetOrCreateActive returns the user's open conversation, creating one when
// none exists. Inbound messages land in the same chat until it is closed.
func (s *ChatService) GetOrCreateActive(ctx context.Context, userID string, source domain.ChatSource) (*domain.Chat, error) {
	chat, err := s.chats.GetActiveByUser(ctx, userID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	return s.CreateChat(ctx, userID, source)
}

// GetChat fetches one chat.
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chat", map[string]any{"chat_id": chatID})
		}
		return nil, apperrors.MapError(err)
	}
	return chat, nil
}

// ListChats returns chats matching the filter, newest activity first.
func (s *ChatService) ListChats(ctx context.Context, filter repository.ChatFilter) ([]domain.Chat, error) {
	chats, err := s.chats.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return chats, nil
}

// TakeChat assigns a waiting chat to an operator. The operator must be
// active and under their max_chats limit; the repository re-checks both the
// WAITING status and the capacity inside one conditional UPDATE, so the
// pre-checks here only exist to return distinct errors.
func (s *ChatService) TakeChat(ctx context.Context, chatID, operatorID string) (*domain.Chat, error) {
	operator, err := s.operators.GetByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": operatorID})
		}
		return nil, apperrors.MapError(err)
	}
	if !operator.IsActive {
		return nil, apperrors.NewConflict("operator inactive", map[string]any{"operator_id": operatorID})
	}

	count, err := s.chats.CountByOperatorAndStatus(ctx, operatorID, domain.ChatStatusInProgress)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if count >= operator.MaxChats {
		return nil, apperrors.NewConflict("operator at capacity", map[string]any{
			"operator_id": operatorID,
			"max_chats":   operator.MaxChats,
		})
	}

	chat, err := s.chats.TakeChat(ctx, chatID, operatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("waiting chat", map[string]any{"chat_id": chatID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventChatTaken,
		ChatID:  chat.ID,
		Actor:   operatorActor(operatorID),
		Payload: events.ChatTakenPayload{OperatorID: operatorID},
	})
	return chat, nil
}

// EscalateChat flags a chat for human attention: appends an
// `escalated:<reason>` tag, requeues to WAITING and raises priority. The
// assignee is untouched; the least-loaded operator is only suggested in the
// emitted event for routing consumers.
func (s *ChatService) EscalateChat(ctx context.Context, chatID, reason string) (*domain.Chat, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("escalation reason required", nil)
	}

	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}

	chat, err := s.chats.Escalate(ctx, chatID, reason)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var suggested *string
	if load, err := s.operators.FindLeastLoaded(ctx); err == nil {
		suggested = &load.Operator.ID
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventChatEscalated,
		ChatID: chat.ID,
		Actor:  events.Actor{Type: domain.AuthorTypeBot},
		Payload: events.ChatEscalatedPayload{
			Reason:              reason,
			SuggestedOperatorID: suggested,
		},
	})
	return chat, nil
}

// CloseChat closes a chat. Only the assigned operator, a supervisor or an
// admin may close it.
func (s *ChatService) CloseChat(ctx context.Context, chatID, operatorID string, role domain.OperatorRole) (*domain.Chat, error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if role != domain.OperatorRoleSupervisor && role != domain.OperatorRoleAdmin {
		if chat.OperatorID == nil || *chat.OperatorID != operatorID {
			return nil, apperrors.NewForbidden("chat assigned to another operator")
		}
	}

	closed, err := s.chats.Close(ctx, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("chat already closed", map[string]any{"chat_id": chatID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventChatClosed,
		ChatID:  closed.ID,
		Actor:   operatorActor(operatorID),
		Payload: events.ChatClosedPayload{OperatorID: operatorID},
	})
	return closed, nil
}

// UpdatePriority changes the chat priority.
func (s *ChatService) UpdatePriority(ctx context.Context, chatID string, priority domain.ChatPriority, operatorID string) (*domain.Chat, error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	oldPriority := chat.Priority

	updated, err := s.chats.UpdatePriority(ctx, chatID, priority)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventChatPriorityChanged,
		ChatID: updated.ID,
		Actor:  operatorActor(operatorID),
		Payload: events.ChatPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: priority,
		},
	})
	return updated, nil
}

// AddTags appends tags to the chat, deduplicated in SQL.
func (s *ChatService) AddTags(ctx context.Context, chatID string, tags []string) (*domain.Chat, error) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) == 0 {
		return nil, apperrors.NewValidationError("at least one tag required", nil)
	}
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	chat, err := s.chats.AddTags(ctx, chatID, cleaned)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return chat, nil
}

// SearchChats loads the filtered set and substring-matches in memory across
// user name, last message text, tags, status and priority. Linear per call;
// fine at console scale.
func (s *ChatService) SearchChats(ctx context.Context, term string, filter repository.ChatFilter) ([]ChatSearchResult, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	chats, err := s.chats.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	results := make([]ChatSearchResult, 0, len(chats))
	for i := range chats {
		chat := chats[i]
		result := ChatSearchResult{Chat: chat}

		if user, err := s.users.GetByID(ctx, chat.UserID); err == nil {
			result.UserName = user.DisplayName()
		}
		if last, err := s.messages.LastByChat(ctx, chat.ID); err == nil {
			result.LastMessageText = last.Text
		}

		if term == "" || matchesChat(&result, term) {
			results = append(results, result)
		}
	}
	return results, nil
}

// GetStats returns console metrics.
func (s *ChatService) GetStats(ctx context.Context) (*repository.ChatStats, error) {
	stats, err := s.chats.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

// FindAvailableOperators lists active operators with spare capacity.
func (s *ChatService) FindAvailableOperators(ctx context.Context) ([]domain.OperatorLoad, error) {
	loads, err := s.operators.FindAvailable(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return loads, nil
}

func matchesChat(result *ChatSearchResult, term string) bool {
	if strings.Contains(strings.ToLower(result.UserName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(result.LastMessageText), term) {
		return true
	}
	if strings.Contains(strings.ToLower(string(result.Chat.Status)), term) {
		return true
	}
	if strings.Contains(strings.ToLower(string(result.Chat.Priority)), term) {
		return true
	}
	for _, tag := range result.Chat.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (s *ChatService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.AuthorTypeUser, UserID: &userID}
}

func operatorActor(operatorID string) events.Actor {
	return events.Actor{Type: domain.AuthorTypeOperator, OperatorID: &operatorID}
}
