package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

const principalKey = "auth_principal"

// Principal is the typed request context for the authenticated operator,
// threaded through middleware to handlers instead of loose locals.
type Principal struct {
	OperatorID string
	Role       domain.OperatorRole
	Operator   *domain.Operator
}

// Middleware validates bearer tokens and loads the operator.
type Middleware struct {
	tokens    *TokenManager
	operators repository.OperatorRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, operators repository.OperatorRepository) *Middleware {
	return &Middleware{tokens: tokens, operators: operators}
}

// RequireOperator enforces authentication for protected routes.
func (m *Middleware) RequireOperator(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseAccess(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	operator, err := m.operators.GetByID(c.Context(), claims.OperatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("operator not found")
		}
		return apperrors.MapError(err)
	}
	if !operator.IsActive {
		return apperrors.NewForbidden("operator inactive")
	}

	c.Locals(principalKey, &Principal{
		OperatorID: operator.ID,
		Role:       operator.Role,
		Operator:   operator,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated operator context.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
