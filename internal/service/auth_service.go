package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// AuthService coordinates operator login and token refresh. Logout is
// stateless; there is no server-side revocation list.
type AuthService struct {
	operators  repository.OperatorRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, operators repository.OperatorRepository) *AuthService {
	return &AuthService{
		operators: operators,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.JWTSecret,
			cfg.Auth.JWTRefreshSecret,
			cfg.Auth.AccessTTL(),
			cfg.Auth.RefreshTTL(),
		),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates an operator. A wrong password is unauthorized; a valid
// password on an inactive account is forbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Operator, *auth.TokenPair, error) {
	operator, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(operator.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !operator.IsActive {
		return nil, nil, apperrors.NewForbidden("operator inactive")
	}

	pair, err := s.tokenMgr.GeneratePair(operator.ID, operator.Role)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if err := s.operators.TouchLastLogin(ctx, operator.ID); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return operator, pair, nil
}

// Refresh validates a refresh token and reissues a pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Operator, *auth.TokenPair, error) {
	claims, err := s.tokenMgr.ParseRefresh(refreshToken)
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	operator, err := s.operators.GetByID(ctx, claims.OperatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("operator not found")
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !operator.IsActive {
		return nil, nil, apperrors.NewForbidden("operator inactive")
	}

	pair, err := s.tokenMgr.GeneratePair(operator.ID, operator.Role)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return operator, pair, nil
}

// Logout is a no-op for stateless JWTs.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// CreateOperator registers a new operator account (admin surface).
func (s *AuthService) CreateOperator(ctx context.Context, name, email, password string, role domain.OperatorRole, maxChats int) (*domain.Operator, error) {
	if _, err := s.operators.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already taken", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if maxChats <= 0 {
		maxChats = 5
	}
	operator := &domain.Operator{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		MaxChats:     maxChats,
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		return nil, apperrors.MapError(err)
	}
	return operator, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
