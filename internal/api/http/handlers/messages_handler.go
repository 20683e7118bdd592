package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// MessagesHandler manages chat thread endpoints.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messageService}
}

// ListMessages GET /api/chats/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 50)
	msgs, err := h.messages.ListByChat(c.Context(), c.Params("id"), limit, (page-1)*limit)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateMessage POST /api/chats/:id/messages appends an operator reply.
func (h *MessagesHandler) CreateMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.messages.CreateOperatorMessage(c.Context(), service.MessageInput{
		ChatID:     c.Params("id"),
		AuthorType: domain.AuthorTypeOperator,
		AuthorID:   principal.OperatorID,
		Text:       req.Text,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// MarkRead POST /api/chats/:id/messages/read.
func (h *MessagesHandler) MarkRead(c *fiber.Ctx) error {
	count, err := h.messages.MarkMessagesAsRead(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"marked": count}})
}

// UnreadCount GET /api/chats/:id/messages/unread.
func (h *MessagesHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.messages.GetUnreadCount(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unread": count}})
}
