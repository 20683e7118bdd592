package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

func TestOpenCaseDefaultsPriority(t *testing.T) {
	cases := new(MockCaseRepository)
	chats := new(MockChatRepository)
	svc := NewCaseService(cases, chats)

	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{ID: "chat-1"}, nil)
	cases.On("Create", mock.Anything, mock.Anything).Return(nil)

	c, err := svc.OpenCase(context.Background(), "chat-1", "op-1", "refund dispute", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusOpen, c.Status)
	assert.Equal(t, domain.ChatPriorityMedium, c.Priority)
	assert.Equal(t, "op-1", c.OpenedBy)
}

func TestOpenCaseRequiresChat(t *testing.T) {
	cases := new(MockCaseRepository)
	chats := new(MockChatRepository)
	svc := NewCaseService(cases, chats)

	chats.On("GetByID", mock.Anything, "chat-404").Return(nil, pgx.ErrNoRows)

	_, err := svc.OpenCase(context.Background(), "chat-404", "op-1", "title", "", domain.ChatPriorityLow)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateStatusRejectsReopeningClosedCase(t *testing.T) {
	cases := new(MockCaseRepository)
	svc := NewCaseService(cases, new(MockChatRepository))

	cases.On("GetByID", mock.Anything, "case-1").Return(&domain.Case{
		ID:     "case-1",
		Status: domain.CaseStatusClosed,
	}, nil)

	_, err := svc.UpdateStatus(context.Background(), "case-1", domain.CaseStatusOpen)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
	cases.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateStatusSetsResolvedAt(t *testing.T) {
	cases := new(MockCaseRepository)
	svc := NewCaseService(cases, new(MockChatRepository))

	cases.On("GetByID", mock.Anything, "case-1").Return(&domain.Case{
		ID:     "case-1",
		Status: domain.CaseStatusOpen,
	}, nil)
	cases.On("Update", mock.Anything, mock.Anything).Return(nil)

	c, err := svc.UpdateStatus(context.Background(), "case-1", domain.CaseStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusResolved, c.Status)
	require.NotNil(t, c.ResolvedAt)
}

func TestUpdateStatusClearsResolvedAtOnReview(t *testing.T) {
	cases := new(MockCaseRepository)
	svc := NewCaseService(cases, new(MockChatRepository))

	resolvedAt := time.Now()
	cases.On("GetByID", mock.Anything, "case-1").Return(&domain.Case{
		ID:         "case-1",
		Status:     domain.CaseStatusResolved,
		ResolvedAt: &resolvedAt,
	}, nil)
	cases.On("Update", mock.Anything, mock.Anything).Return(nil)

	c, err := svc.UpdateStatus(context.Background(), "case-1", domain.CaseStatusInReview)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusInReview, c.Status)
	assert.Nil(t, c.ResolvedAt)
}
