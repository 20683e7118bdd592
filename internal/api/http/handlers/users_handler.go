package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// UsersHandler manages end-user panel endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// ListUsers GET /api/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		IsBlocked:  parseBool(c.Query("blocked")),
		IsVerified: parseBool(c.Query("verified")),
		Limit:      parseInt(c.Query("limit"), 50),
	}
	if flag := c.Query("flag"); flag != "" {
		filter.Flag = &flag
	}
	page := parseInt(c.Query("page"), 1)
	filter.Offset = (page - 1) * filter.Limit

	users, err := h.users.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /api/users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// SetBlocked PATCH /api/users/:id/block.
func (h *UsersHandler) SetBlocked(c *fiber.Ctx) error {
	var req dto.SetBlockedRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.SetBlocked(c.Context(), c.Params("id"), req.Blocked)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// SetVerified PATCH /api/users/:id/verify.
func (h *UsersHandler) SetVerified(c *fiber.Ctx) error {
	var req dto.SetVerifiedRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.SetVerified(c.Context(), c.Params("id"), req.Verified)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}
