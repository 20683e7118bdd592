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

// MessageService persists thread messages and dispatches on author type.
type MessageService struct {
	messages   repository.MessageRepository
	chats      repository.ChatRepository
	dispatcher events.Dispatcher
}

// MessageDependencies bundles repositories for the message service.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	ChatRepo    repository.ChatRepository
	Dispatcher  events.Dispatcher
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:   deps.MessageRepo,
		chats:      deps.ChatRepo,
		dispatcher: deps.Dispatcher,
	}
}

// MessageInput describes a message creation payload.
type MessageInput struct {
	ChatID            string
	AuthorType        domain.MessageAuthorType
	AuthorID          string
	Text              string
	TelegramMessageID *int64
	MediaType         *string
	MediaFileID       *string
}

// CreateMessage dispatches to the author-type specific path.
func (s *MessageService) CreateMessage(ctx context.Context, input MessageInput) (*domain.Message, error) {
	switch input.AuthorType {
	case domain.AuthorTypeUser:
		return s.CreateUserMessage(ctx, input)
	case domain.AuthorTypeOperator:
		return s.CreateOperatorMessage(ctx, input)
	case domain.AuthorTypeBot:
		return s.CreateBotMessage(ctx, input)
	default:
		return nil, apperrors.NewValidationError("unknown author type", map[string]any{"author_type": input.AuthorType})
	}
}

// CreateUserMessage appends an inbound user message and marks chat activity.
func (s *MessageService) CreateUserMessage(ctx context.Context, input MessageInput) (*domain.Message, error) {
	chat, err := s.loadChat(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:            chat.ID,
		AuthorType:        domain.AuthorTypeUser,
		AuthorID:          optional(input.AuthorID),
		Text:              strings.TrimSpace(input.Text),
		TelegramMessageID: input.TelegramMessageID,
		MediaType:         input.MediaType,
		MediaFileID:       input.MediaFileID,
	}
	return s.persist(ctx, chat, msg)
}

// CreateOperatorMessage appends an operator reply. The author must be the
// operator currently assigned to the chat.
func (s *MessageService) CreateOperatorMessage(ctx context.Context, input MessageInput) (*domain.Message, error) {
	chat, err := s.loadChat(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}
	if chat.OperatorID == nil || *chat.OperatorID != input.AuthorID {
		return nil, apperrors.NewForbidden("chat is not assigned to this operator")
	}

	msg := &domain.Message{
		ChatID:     chat.ID,
		AuthorType: domain.AuthorTypeOperator,
		AuthorID:   optional(input.AuthorID),
		Text:       strings.TrimSpace(input.Text),
		IsRead:     true,
	}
	created, err := s.persist(ctx, chat, msg)
	if err != nil {
		return nil, err
	}
	if err := s.chats.SetFirstOperatorReply(ctx, chat.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return created, nil
}

// CreateBotMessage appends an automated reply.
func (s *MessageService) CreateBotMessage(ctx context.Context, input MessageInput) (*domain.Message, error) {
	chat, err := s.loadChat(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:            chat.ID,
		AuthorType:        domain.AuthorTypeBot,
		Text:              strings.TrimSpace(input.Text),
		TelegramMessageID: input.TelegramMessageID,
		IsRead:            true,
	}
	return s.persist(ctx, chat, msg)
}

// ListByChat returns a page of the thread in chronological order.
func (s *MessageService) ListByChat(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error) {
	msgs, err := s.messages.ListByChat(ctx, chatID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// MarkMessagesAsRead flips every unread user message in the chat.
func (s *MessageService) MarkMessagesAsRead(ctx context.Context, chatID string) (int64, error) {
	count, err := s.messages.MarkReadByChat(ctx, chatID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// GetUnreadMessages returns pending user messages for a chat.
func (s *MessageService) GetUnreadMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	msgs, err := s.messages.ListUnreadByChat(ctx, chatID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// GetUnreadCount returns the number of pending user messages for a chat.
func (s *MessageService) GetUnreadCount(ctx context.Context, chatID string) (int, error) {
	count, err := s.messages.CountUnreadByChat(ctx, chatID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// ApplyTelegramEdit propagates an edited Telegram message into the thread.
func (s *MessageService) ApplyTelegramEdit(ctx context.Context, chatID string, telegramMessageID int64, text string) (*domain.Message, error) {
	msg, err := s.messages.ApplyTelegramEdit(ctx, chatID, telegramMessageID, strings.TrimSpace(text))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("message", map[string]any{
				"chat_id":             chatID,
				"telegram_message_id": telegramMessageID,
			})
		}
		return nil, apperrors.MapError(err)
	}
	return msg, nil
}

func (s *MessageService) loadChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chat", map[string]any{"chat_id": chatID})
		}
		return nil, apperrors.MapError(err)
	}
	return chat, nil
}

func (s *MessageService) persist(ctx context.Context, chat *domain.Chat, msg *domain.Message) (*domain.Message, error) {
	if msg.Text == "" && msg.MediaFileID == nil {
		return nil, apperrors.NewValidationError("message text required", nil)
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	// activity signal for listings sorted by updated_at
	if err := s.chats.TouchActivity(ctx, chat.ID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventMessageAdded,
		ChatID: chat.ID,
		Actor:  messageActor(msg),
		Payload: events.MessageAddedPayload{
			MessageID:   msg.ID,
			AuthorType:  msg.AuthorType,
			AuthorID:    msg.AuthorID,
			TextPreview: textPreview(msg.Text, 120),
		},
	})
	return msg, nil
}

func (s *MessageService) publishEvent(ctx context.Context, event events.Event) {
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

func messageActor(msg *domain.Message) events.Actor {
	actor := events.Actor{Type: msg.AuthorType}
	switch msg.AuthorType {
	case domain.AuthorTypeUser:
		actor.UserID = msg.AuthorID
	case domain.AuthorTypeOperator:
		actor.OperatorID = msg.AuthorID
	}
	return actor
}

func textPreview(text string, max int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
