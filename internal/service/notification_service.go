package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventChatCreated, n.handleChatCreated)
	n.dispatcher.Subscribe(events.EventChatTaken, n.handleChatTaken)
	n.dispatcher.Subscribe(events.EventChatEscalated, n.handleChatEscalated)
	n.dispatcher.Subscribe(events.EventChatClosed, n.handleChatClosed)
	n.dispatcher.Subscribe(events.EventChatPriorityChanged, n.handleChatPriorityChanged)
	n.dispatcher.Subscribe(events.EventMessageAdded, n.handleMessageAdded)
}

func (n *NotificationService) handleChatCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ChatCreated", zap.String("chat_id", event.ChatID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleChatTaken(ctx context.Context, event events.Event) error {
	n.logger.Info("ChatTaken", zap.String("chat_id", event.ChatID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleChatEscalated(ctx context.Context, event events.Event) error {
	n.logger.Info("ChatEscalated", zap.String("chat_id", event.ChatID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleChatClosed(ctx context.Context, event events.Event) error {
	n.logger.Info("ChatClosed", zap.String("chat_id", event.ChatID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleChatPriorityChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ChatPriorityChanged", zap.String("chat_id", event.ChatID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMessageAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("MessageAdded", zap.String("chat_id", event.ChatID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("chat_id", event.ChatID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("chat_id", event.ChatID),
		zap.String("event_type", string(event.Type)))
}
