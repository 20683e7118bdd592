package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/rag"
	"github.com/spec-kit/support-console/internal/service"
)

// escalationKeywords triggers a handoff to a human operator when any of them
// appears in an inbound message.
var escalationKeywords = []string{"помощь", "оператор", "человек", "жалоба", "поддержка"}

const (
	welcomeText     = "Здравствуйте! Я бот поддержки. Опишите ваш вопрос, и я постараюсь помочь."
	fallbackAckText = "Спасибо за ваше сообщение! Мы обработаем его в ближайшее время."
	apologyText     = "Извините, произошла ошибка. Попробуйте повторить запрос позже."
	handoffNote     = "\n\nЕсли ответ не помог, напишите «оператор» — я позову специалиста."
	helpText        = "Я отвечаю на вопросы автоматически. Если нужен человек, напишите «оператор»."
	contactText     = "Наша поддержка доступна круглосуточно прямо в этом чате."
	menuText        = "Выберите действие:"
)

// Service turns raw Telegram updates into persisted conversation state and
// produces a reply.
type Service struct {
	sender   Sender
	users    *service.UserService
	chats    *service.ChatService
	messages *service.MessageService
	rag      rag.Client
	logger   *zap.Logger
}

// Dependencies bundles collaborators for the ingestion service.
type Dependencies struct {
	Sender   Sender
	Users    *service.UserService
	Chats    *service.ChatService
	Messages *service.MessageService
	RAG      rag.Client
	Logger   *zap.Logger
}

// NewService constructs the ingestion service.
func NewService(deps Dependencies) *Service {
	return &Service{
		sender:   deps.Sender,
		users:    deps.Users,
		chats:    deps.Chats,
		messages: deps.Messages,
		rag:      deps.RAG,
		logger:   deps.Logger,
	}
}

// HandleUpdate dispatches one webhook update. Persistence failures are
// returned so the webhook handler can answer 500 and let Telegram retry.
func (s *Service) HandleUpdate(ctx context.Context, update *tgbotapi.Update) error {
	switch {
	case update.Message != nil:
		return s.handleMessage(ctx, update.Message)
	case update.EditedMessage != nil:
		return s.handleEditedMessage(ctx, update.EditedMessage)
	case update.CallbackQuery != nil:
		return s.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		s.logger.Debug("ignoring unsupported update type", zap.Int("update_id", update.UpdateID))
		return nil
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if msg.IsCommand() && msg.Command() == "start" {
		return s.handleStartCommand(ctx, msg)
	}

	user, err := s.users.GetOrCreate(ctx, msg.From.ID, service.UserProfileInput{
		Username:     msg.From.UserName,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: msg.From.LanguageCode,
	})
	if err != nil {
		return err
	}
	if user.IsBlocked {
		s.logger.Info("ignoring message from blocked user", zap.Int64("telegram_id", user.TelegramID))
		return nil
	}

	chat, err := s.chats.GetOrCreateActive(ctx, user.ID, domain.ChatSourceTelegram)
	if err != nil {
		return err
	}

	tgMessageID := int64(msg.MessageID)
	input := service.MessageInput{
		ChatID:            chat.ID,
		AuthorType:        domain.AuthorTypeUser,
		AuthorID:          user.ID,
		Text:              msg.Text,
		TelegramMessageID: &tgMessageID,
	}
	if len(msg.Photo) > 0 {
		mediaType := "photo"
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		input.MediaType = &mediaType
		input.MediaFileID = &fileID
		if input.Text == "" {
			input.Text = msg.Caption
		}
	} else if msg.Document != nil {
		mediaType := "document"
		fileID := msg.Document.FileID
		input.MediaType = &mediaType
		input.MediaFileID = &fileID
		if input.Text == "" {
			input.Text = msg.Caption
		}
	}

	if _, err := s.messages.CreateUserMessage(ctx, input); err != nil {
		return err
	}
	if err := s.users.UpdateActivity(ctx, user.ID); err != nil {
		s.logger.Warn("failed to bump user activity", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.checkEscalation(ctx, chat, input.Text)
	s.processUserMessage(ctx, chat, user, input.Text, msg.Chat.ID)
	return nil
}

func (s *Service) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := s.users.GetOrCreate(ctx, msg.From.ID, service.UserProfileInput{
		Username:     msg.From.UserName,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: msg.From.LanguageCode,
	}); err != nil {
		return err
	}

	if s.sender == nil {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Помощь", "help"),
			tgbotapi.NewInlineKeyboardButtonData("Контакты", "contact"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Меню", "menu"),
		),
	)
	if _, err := s.sender.SendWithKeyboard(msg.Chat.ID, welcomeText, markup); err != nil {
		s.logger.Error("failed to send welcome", zap.Int64("tg_chat_id", msg.Chat.ID), zap.Error(err))
	}
	return nil
}

// handleEditedMessage propagates a Telegram-side edit into the stored thread.
func (s *Service) handleEditedMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	user, err := s.users.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		s.logger.Warn("edit for unknown user", zap.Int64("telegram_id", msg.From.ID))
		return nil
	}
	chat, err := s.chats.GetOrCreateActive(ctx, user.ID, domain.ChatSourceTelegram)
	if err != nil {
		return err
	}
	if _, err := s.messages.ApplyTelegramEdit(ctx, chat.ID, int64(msg.MessageID), msg.Text); err != nil {
		s.logger.Warn("edit did not match a stored message",
			zap.String("chat_id", chat.ID),
			zap.Int("telegram_message_id", msg.MessageID))
	}
	return nil
}

func (s *Service) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.Message == nil || s.sender == nil {
		return nil
	}
	_ = s.sender.AnswerCallback(query.ID)

	var text string
	switch query.Data {
	case "help":
		text = helpText
	case "contact":
		text = contactText
	case "menu":
		text = menuText
	default:
		s.logger.Debug("unknown callback data", zap.String("data", query.Data))
		return nil
	}
	if _, err := s.sender.SendText(query.Message.Chat.ID, text); err != nil {
		s.logger.Error("failed to answer callback", zap.String("data", query.Data), zap.Error(err))
	}
	return nil
}

// checkEscalation substring-matches the keyword list. Fires only while the
// chat is still WAITING and not already escalation-tagged.
func (s *Service) checkEscalation(ctx context.Context, chat *domain.Chat, text string) {
	if chat.Status != domain.ChatStatusWaiting || chat.IsEscalated() {
		return
	}
	lowered := strings.ToLower(text)
	for _, keyword := range escalationKeywords {
		if strings.Contains(lowered, keyword) {
			if _, err := s.chats.EscalateChat(ctx, chat.ID, "keyword: "+keyword); err != nil {
				s.logger.Error("escalation failed", zap.String("chat_id", chat.ID), zap.Error(err))
			}
			return
		}
	}
}

// processUserMessage asks the answer backend and replies. RAG failures fall
// back to a fixed acknowledgement; send/persist failures fall back again to a
// best-effort apology.
func (s *Service) processUserMessage(ctx context.Context, chat *domain.Chat, user *domain.User, text string, tgChatID int64) {
	reply := fallbackAckText
	if s.rag != nil && strings.TrimSpace(text) != "" {
		language := "ru"
		if user.LanguageCode != nil && *user.LanguageCode != "" {
			language = *user.LanguageCode
		}
		answer, err := s.rag.Answer(ctx, rag.Query{
			Question: text,
			UserID:   user.ID,
			ChatID:   chat.ID,
			Language: language,
		})
		if err != nil {
			s.logger.Warn("rag answer failed", zap.String("chat_id", chat.ID), zap.Error(err))
		} else {
			reply = answer.Text
			if answer.Confidence < 0.6 {
				reply += handoffNote
			} else if len(answer.Sources) > 0 && answer.Confidence > 0.7 {
				reply += fmt.Sprintf("\n\nОтвет основан на %d источниках из базы знаний.", len(answer.Sources))
			}
		}
	}

	if err := s.sendAndPersistBotReply(ctx, chat.ID, tgChatID, reply); err != nil {
		s.logger.Error("bot reply failed, sending apology",
			zap.String("chat_id", chat.ID), zap.Error(err))
		if apologyErr := s.sendAndPersistBotReply(ctx, chat.ID, tgChatID, apologyText); apologyErr != nil {
			s.logger.Error("apology delivery failed", zap.String("chat_id", chat.ID), zap.Error(apologyErr))
		}
	}
}

func (s *Service) sendAndPersistBotReply(ctx context.Context, chatID string, tgChatID int64, text string) error {
	// No sender means the bot runs without a Telegram token. Inbound
	// traffic is still persisted, outbound replies are dropped.
	if s.sender == nil {
		return nil
	}
	tgMessageID, err := s.sender.SendText(tgChatID, text)
	if err != nil {
		return err
	}
	_, err = s.messages.CreateBotMessage(ctx, service.MessageInput{
		ChatID:            chatID,
		AuthorType:        domain.AuthorTypeBot,
		Text:              text,
		TelegramMessageID: &tgMessageID,
	})
	return err
}
