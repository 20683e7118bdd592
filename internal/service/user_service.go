package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// UserService manages end-user identities keyed by Telegram id.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UserProfileInput carries optional profile fields from an inbound update.
type UserProfileInput struct {
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// GetOrCreate upserts the user by telegram_id. Calling twice with the same id
// returns the same row; only provided profile fields are refreshed.
func (s *UserService) GetOrCreate(ctx context.Context, telegramID int64, profile UserProfileInput) (*domain.User, error) {
	if telegramID == 0 {
		return nil, apperrors.NewValidationError("telegram_id required", nil)
	}
	user, err := s.users.Upsert(ctx, telegramID, repository.UserProfile{
		Username:     optional(profile.Username),
		FirstName:    optional(profile.FirstName),
		LastName:     optional(profile.LastName),
		LanguageCode: optional(profile.LanguageCode),
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateActivity refreshes the user's last-activity timestamp.
func (s *UserService) UpdateActivity(ctx context.Context, userID string) error {
	if err := s.users.TouchActivity(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetByID fetches one user.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetByTelegramID fetches one user by external id.
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"telegram_id": telegramID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// SetBlocked flips the blocked flag.
func (s *UserService) SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsBlocked = blocked
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetVerified flips the verified flag.
func (s *UserService) SetVerified(ctx context.Context, userID string, verified bool) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsVerified = verified
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// AddFlag appends a free-form flag if not already present.
func (s *UserService) AddFlag(ctx context.Context, userID, flag string) (*domain.User, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return nil, apperrors.NewValidationError("flag required", nil)
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, existing := range user.Flags {
		if existing == flag {
			return user, nil
		}
	}
	user.Flags = append(user.Flags, flag)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// AdjustBalance applies a signed delta to the user's balance.
func (s *UserService) AdjustBalance(ctx context.Context, userID string, delta float64) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Balance += delta
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func optional(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}
