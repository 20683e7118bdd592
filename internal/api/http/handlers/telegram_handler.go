package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/telegram"
)

// TelegramHandler receives bot webhook deliveries.
type TelegramHandler struct {
	ingestion *telegram.Service
	logger    *zap.Logger
}

// NewTelegramHandler constructs handler.
func NewTelegramHandler(ingestion *telegram.Service, logger *zap.Logger) *TelegramHandler {
	return &TelegramHandler{ingestion: ingestion, logger: logger}
}

// Webhook POST /telegram/webhook. Unknown update shapes are acknowledged with
// 200 so Telegram stops retrying them; persistence failures return 500 and
// rely on Telegram's own retry policy.
func (h *TelegramHandler) Webhook(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		h.logger.Warn("undecodable webhook payload", zap.Error(err))
		return c.JSON(fiber.Map{"ok": true})
	}

	if err := h.ingestion.HandleUpdate(c.UserContext(), &update); err != nil {
		h.logger.Error("webhook processing failed",
			zap.Int("update_id", update.UpdateID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}
