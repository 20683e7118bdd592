package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.OperatorRole) fiber.Handler {
	allowedSet := make(map[domain.OperatorRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// CanManageChat reports whether the principal may act on a chat assigned to
// another operator. Supervisors and admins may; operators only own chats.
func CanManageChat(principal *Principal, chat *domain.Chat) bool {
	if principal == nil {
		return false
	}
	if principal.Role == domain.OperatorRoleSupervisor || principal.Role == domain.OperatorRoleAdmin {
		return true
	}
	return chat.OperatorID != nil && *chat.OperatorID == principal.OperatorID
}
