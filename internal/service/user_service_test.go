package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

func TestGetOrCreateIsIdempotentPerTelegramID(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users)

	stored := &domain.User{ID: "user-1", TelegramID: 42}
	users.On("Upsert", mock.Anything, int64(42), mock.Anything).Return(stored, nil).Twice()

	first, err := svc.GetOrCreate(context.Background(), 42, UserProfileInput{Username: "ann"})
	require.NoError(t, err)
	second, err := svc.GetOrCreate(context.Background(), 42, UserProfileInput{Username: "ann"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	users.AssertExpectations(t)
}

func TestGetOrCreateRejectsZeroTelegramID(t *testing.T) {
	svc := NewUserService(new(MockUserRepository))

	_, err := svc.GetOrCreate(context.Background(), 0, UserProfileInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestGetOrCreateBlankProfileFieldsBecomeNil(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users)

	users.On("Upsert", mock.Anything, int64(7), mock.MatchedBy(func(profile repository.UserProfile) bool {
		return profile.Username == nil && profile.FirstName != nil && *profile.FirstName == "Ann"
	})).Return(&domain.User{ID: "user-1", TelegramID: 7}, nil)

	_, err := svc.GetOrCreate(context.Background(), 7, UserProfileInput{Username: "  ", FirstName: "Ann"})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAddFlagSkipsDuplicates(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users)

	users.On("GetByID", mock.Anything, "user-1").Return(&domain.User{
		ID:    "user-1",
		Flags: []string{"vip"},
	}, nil)

	user, err := svc.AddFlag(context.Background(), "user-1", "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, user.Flags)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetBlockedPersistsFlag(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users)

	users.On("GetByID", mock.Anything, "user-1").Return(&domain.User{ID: "user-1"}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(user *domain.User) bool {
		return user.IsBlocked
	})).Return(nil)

	user, err := svc.SetBlocked(context.Background(), "user-1", true)
	require.NoError(t, err)
	assert.True(t, user.IsBlocked)
	users.AssertExpectations(t)
}
