package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// CasesHandler manages case endpoints.
type CasesHandler struct {
	cases *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{cases: caseService}
}

// OpenCase POST /api/chats/:id/cases.
func (h *CasesHandler) OpenCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.OpenCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	opened, err := h.cases.OpenCase(c.Context(), c.Params("id"), principal.OperatorID, req.Title, req.Description, req.Priority)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": caseResponse(opened)})
}

// ListCases GET /api/chats/:id/cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	cases, err := h.cases.ListByChat(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, caseResponse(&cases[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCase GET /api/cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	found, err := h.cases.GetCase(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(found)})
}

// UpdateStatus PATCH /api/cases/:id/status.
func (h *CasesHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateCaseStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	updated, err := h.cases.UpdateStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(updated)})
}
