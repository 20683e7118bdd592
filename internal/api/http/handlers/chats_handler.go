package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// ChatsHandler manages operator chat endpoints.
type ChatsHandler struct {
	chats *service.ChatService
}

// NewChatsHandler constructs handler.
func NewChatsHandler(chatService *service.ChatService) *ChatsHandler {
	return &ChatsHandler{chats: chatService}
}

// ListChats GET /api/chats.
func (h *ChatsHandler) ListChats(c *fiber.Ctx) error {
	filter := parseChatQuery(c)
	chats, err := h.chats.ListChats(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ChatSummary, 0, len(chats))
	for i := range chats {
		items = append(items, chatSummary(&chats[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetChat GET /api/chats/:id.
func (h *ChatsHandler) GetChat(c *fiber.Ctx) error {
	chat, err := h.chats.GetChat(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatSummary(chat)})
}

// TakeChat POST /api/chats/:id/take.
func (h *ChatsHandler) TakeChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	chat, err := h.chats.TakeChat(c.Context(), c.Params("id"), principal.OperatorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatSummary(chat)})
}

// CloseChat POST /api/chats/:id/close.
func (h *ChatsHandler) CloseChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	chat, err := h.chats.CloseChat(c.Context(), c.Params("id"), principal.OperatorID, principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatSummary(chat)})
}

// EscalateChat POST /api/chats/:id/escalate.
func (h *ChatsHandler) EscalateChat(c *fiber.Ctx) error {
	var req dto.EscalateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	chat, err := h.chats.EscalateChat(c.Context(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatSummary(chat)})
}

// UpdatePriority PUT/PATCH /api/chats/:id/priority.
func (h *ChatsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == "" {
		return apperrors.NewValidationError("priority required", nil)
	}
	chat, err := h.chats.UpdatePriority(c.Context(), c.Params("id"), req.Priority, principal.OperatorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatSummary(chat)})
}

// UpdateChat POST /api/chats/:id applies a partial update (priority, tags).
func (h *ChatsHandler) UpdateChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.UpdateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == nil && len(req.Tags) == 0 {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	chatID := c.Params("id")
	if req.Priority != nil {
		if _, err := h.chats.UpdatePriority(c.Context(), chatID, *req.Priority, principal.OperatorID); err != nil {
			return err
		}
	}
	if len(req.Tags) > 0 {
		if _, err := h.chats.AddTags(c.Context(), chatID, req.Tags); err != nil {
			return err
		}
	}
	chat, err := h.chats.GetChat(c.Context(), chatID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatSummary(chat)})
}

// AddTags POST /api/chats/:id/tags.
func (h *ChatsHandler) AddTags(c *fiber.Ctx) error {
	var req dto.AddTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	chat, err := h.chats.AddTags(c.Context(), c.Params("id"), req.Tags)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chatSummary(chat)})
}

// SearchChats GET /api/chats/search?q=.
func (h *ChatsHandler) SearchChats(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	filter := parseChatQuery(c)
	results, err := h.chats.SearchChats(c.Context(), term, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ChatSearchItem, 0, len(results))
	for i := range results {
		items = append(items, searchItem(&results[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AvailableOperators GET /api/operators/available.
func (h *ChatsHandler) AvailableOperators(c *fiber.Ctx) error {
	loads, err := h.chats.FindAvailableOperators(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.OperatorLoadResponse, 0, len(loads))
	for i := range loads {
		items = append(items, dto.OperatorLoadResponse{
			OperatorResponse: operatorResponse(&loads[i].Operator),
			ChatCount:        loads[i].ChatCount,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
