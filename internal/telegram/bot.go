package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/config"
)

// Sender is the outbound Telegram surface used by the ingestion service.
type Sender interface {
	SendText(chatID int64, text string) (int64, error)
	SendWithKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int64, error)
	AnswerCallback(callbackID string) error
}

// Bot wraps the Telegram Bot API client.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewBot authorizes against the Bot API.
func NewBot(cfg config.TelegramConfig, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return &Bot{api: api, logger: logger}, nil
}

// RegisterWebhook points Telegram at our webhook endpoint.
func (b *Bot) RegisterWebhook(cfg config.TelegramConfig) error {
	if cfg.WebhookURL == "" {
		b.logger.Warn("TG_WEBHOOK_URL not set, skipping webhook registration")
		return nil
	}
	wh, err := tgbotapi.NewWebhook(cfg.WebhookURL + cfg.WebhookPath)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// SendText delivers a plain text message and returns the Telegram message id.
func (b *Bot) SendText(chatID int64, text string) (int64, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0, err
	}
	return int64(sent.MessageID), nil
}

// SendWithKeyboard delivers a message with an inline keyboard attached.
func (b *Bot) SendWithKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int64, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0, err
	}
	return int64(sent.MessageID), nil
}

// AnswerCallback acknowledges an inline-button press.
func (b *Bot) AnswerCallback(callbackID string) error {
	callback := tgbotapi.NewCallback(callbackID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("telegram callback answer failed", zap.String("callback_id", callbackID), zap.Error(err))
		return err
	}
	return nil
}
