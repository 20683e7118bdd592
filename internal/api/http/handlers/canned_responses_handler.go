package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// CannedResponsesHandler manages reply template endpoints.
type CannedResponsesHandler struct {
	responses *service.CannedResponseService
}

// NewCannedResponsesHandler constructs handler.
func NewCannedResponsesHandler(responseService *service.CannedResponseService) *CannedResponsesHandler {
	return &CannedResponsesHandler{responses: responseService}
}

// Create POST /api/canned-responses.
func (h *CannedResponsesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.CannedResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.responses.Create(c.Context(), req.Title, req.Body, req.Category, principal.OperatorID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": cannedResponseItem(created)})
}

// List GET /api/canned-responses.
func (h *CannedResponsesHandler) List(c *fiber.Ctx) error {
	filter := repository.CannedResponseFilter{
		IsActive: parseBool(c.Query("active")),
		Limit:    parseInt(c.Query("limit"), 50),
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	page := parseInt(c.Query("page"), 1)
	filter.Offset = (page - 1) * filter.Limit

	responses, err := h.responses.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.CannedResponseItem, 0, len(responses))
	for i := range responses {
		items = append(items, cannedResponseItem(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/canned-responses/:id.
func (h *CannedResponsesHandler) Get(c *fiber.Ctx) error {
	found, err := h.responses.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cannedResponseItem(found)})
}

// Update PUT /api/canned-responses/:id.
func (h *CannedResponsesHandler) Update(c *fiber.Ctx) error {
	var req dto.CannedResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	updated, err := h.responses.Update(c.Context(), c.Params("id"), req.Title, req.Body, req.Category, active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cannedResponseItem(updated)})
}

// Delete DELETE /api/canned-responses/:id.
func (h *CannedResponsesHandler) Delete(c *fiber.Ctx) error {
	if err := h.responses.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ok": true}})
}

// Use POST /api/canned-responses/:id/use returns the body and bumps usage.
func (h *CannedResponsesHandler) Use(c *fiber.Ctx) error {
	used, err := h.responses.Use(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cannedResponseItem(used)})
}
