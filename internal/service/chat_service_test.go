package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

func newChatServiceForTest(chats *MockChatRepository, operators *MockOperatorRepository, dispatcher *recordingDispatcher) *ChatService {
	return NewChatService(ChatDependencies{
		ChatRepo:     chats,
		OperatorRepo: operators,
		MessageRepo:  new(MockMessageRepository),
		UserRepo:     new(MockUserRepository),
		Dispatcher:   dispatcher,
	})
}

func activeOperator(id string, maxChats int) *domain.Operator {
	return &domain.Operator{
		ID:       id,
		Name:     "Op",
		Email:    id + "@example.com",
		Role:     domain.OperatorRoleOperator,
		IsActive: true,
		MaxChats: maxChats,
	}
}

func TestTakeChatFailsWhenOperatorAtCapacity(t *testing.T) {
	chats := new(MockChatRepository)
	operators := new(MockOperatorRepository)
	svc := newChatServiceForTest(chats, operators, &recordingDispatcher{})

	operators.On("GetByID", mock.Anything, "op-1").Return(activeOperator("op-1", 3), nil)
	chats.On("CountByOperatorAndStatus", mock.Anything, "op-1", domain.ChatStatusInProgress).Return(3, nil)

	_, err := svc.TakeChat(context.Background(), "chat-1", "op-1")
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 409, domainErr.HTTPStatus)
	chats.AssertNotCalled(t, "TakeChat", mock.Anything, mock.Anything, mock.Anything)
}

func TestTakeChatDoubleTakeIsNotFound(t *testing.T) {
	chats := new(MockChatRepository)
	operators := new(MockOperatorRepository)
	svc := newChatServiceForTest(chats, operators, &recordingDispatcher{})

	operators.On("GetByID", mock.Anything, "op-1").Return(activeOperator("op-1", 5), nil)
	chats.On("CountByOperatorAndStatus", mock.Anything, "op-1", domain.ChatStatusInProgress).Return(1, nil)
	// the conditional UPDATE matched zero rows: someone else already took it
	chats.On("TakeChat", mock.Anything, "chat-1", "op-1").Return(nil, pgx.ErrNoRows)

	_, err := svc.TakeChat(context.Background(), "chat-1", "op-1")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTakeChatRejectsInactiveOperator(t *testing.T) {
	chats := new(MockChatRepository)
	operators := new(MockOperatorRepository)
	svc := newChatServiceForTest(chats, operators, &recordingDispatcher{})

	inactive := activeOperator("op-1", 5)
	inactive.IsActive = false
	operators.On("GetByID", mock.Anything, "op-1").Return(inactive, nil)

	_, err := svc.TakeChat(context.Background(), "chat-1", "op-1")
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTakeChatPublishesEvent(t *testing.T) {
	chats := new(MockChatRepository)
	operators := new(MockOperatorRepository)
	dispatcher := &recordingDispatcher{}
	svc := newChatServiceForTest(chats, operators, dispatcher)

	operatorID := "op-1"
	taken := &domain.Chat{ID: "chat-1", UserID: "user-1", OperatorID: &operatorID, Status: domain.ChatStatusInProgress}
	operators.On("GetByID", mock.Anything, "op-1").Return(activeOperator("op-1", 5), nil)
	chats.On("CountByOperatorAndStatus", mock.Anything, "op-1", domain.ChatStatusInProgress).Return(0, nil)
	chats.On("TakeChat", mock.Anything, "chat-1", "op-1").Return(taken, nil)

	chat, err := svc.TakeChat(context.Background(), "chat-1", "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ChatStatusInProgress, chat.Status)

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventChatTaken, dispatcher.published[0].Type)
}

func TestEscalateChatRequeuesWithoutTouchingAssignee(t *testing.T) {
	chats := new(MockChatRepository)
	operators := new(MockOperatorRepository)
	dispatcher := &recordingDispatcher{}
	svc := newChatServiceForTest(chats, operators, dispatcher)

	operatorID := "op-2"
	before := &domain.Chat{ID: "chat-1", UserID: "user-1", OperatorID: &operatorID, Status: domain.ChatStatusInProgress, Priority: domain.ChatPriorityLow}
	after := &domain.Chat{
		ID:         "chat-1",
		UserID:     "user-1",
		OperatorID: &operatorID,
		Status:     domain.ChatStatusWaiting,
		Priority:   domain.ChatPriorityHigh,
		Tags:       []string{"escalated:keyword: оператор"},
	}
	chats.On("GetByID", mock.Anything, "chat-1").Return(before, nil)
	chats.On("Escalate", mock.Anything, "chat-1", "keyword: оператор").Return(after, nil)
	operators.On("FindLeastLoaded", mock.Anything).Return(&domain.OperatorLoad{Operator: *activeOperator("op-9", 5), ChatCount: 0}, nil)

	chat, err := svc.EscalateChat(context.Background(), "chat-1", "keyword: оператор")
	require.NoError(t, err)

	assert.Equal(t, domain.ChatStatusWaiting, chat.Status)
	assert.True(t, chat.IsEscalated())
	require.NotNil(t, chat.OperatorID)
	assert.Equal(t, "op-2", *chat.OperatorID)

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventChatEscalated, dispatcher.published[0].Type)
	payload := dispatcher.published[0].Payload.(events.ChatEscalatedPayload)
	require.NotNil(t, payload.SuggestedOperatorID)
	assert.Equal(t, "op-9", *payload.SuggestedOperatorID)
}

func TestEscalateChatRequiresReason(t *testing.T) {
	svc := newChatServiceForTest(new(MockChatRepository), new(MockOperatorRepository), &recordingDispatcher{})

	_, err := svc.EscalateChat(context.Background(), "chat-1", "   ")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCloseChatForbiddenForOtherOperator(t *testing.T) {
	chats := new(MockChatRepository)
	svc := newChatServiceForTest(chats, new(MockOperatorRepository), &recordingDispatcher{})

	assignee := "op-1"
	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{
		ID:         "chat-1",
		OperatorID: &assignee,
		Status:     domain.ChatStatusInProgress,
	}, nil)

	_, err := svc.CloseChat(context.Background(), "chat-1", "op-2", domain.OperatorRoleOperator)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCloseChatAllowedForSupervisor(t *testing.T) {
	chats := new(MockChatRepository)
	dispatcher := &recordingDispatcher{}
	svc := newChatServiceForTest(chats, new(MockOperatorRepository), dispatcher)

	assignee := "op-1"
	open := &domain.Chat{ID: "chat-1", OperatorID: &assignee, Status: domain.ChatStatusInProgress}
	closed := &domain.Chat{ID: "chat-1", OperatorID: &assignee, Status: domain.ChatStatusClosed}
	chats.On("GetByID", mock.Anything, "chat-1").Return(open, nil)
	chats.On("Close", mock.Anything, "chat-1").Return(closed, nil)

	chat, err := svc.CloseChat(context.Background(), "chat-1", "op-7", domain.OperatorRoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, domain.ChatStatusClosed, chat.Status)
	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventChatClosed, dispatcher.published[0].Type)
}

func TestGetOrCreateActiveReusesOpenChat(t *testing.T) {
	chats := new(MockChatRepository)
	svc := newChatServiceForTest(chats, new(MockOperatorRepository), &recordingDispatcher{})

	existing := &domain.Chat{ID: "chat-1", UserID: "user-1", Status: domain.ChatStatusWaiting}
	chats.On("GetActiveByUser", mock.Anything, "user-1").Return(existing, nil)

	chat, err := svc.GetOrCreateActive(context.Background(), "user-1", domain.ChatSourceTelegram)
	require.NoError(t, err)
	assert.Equal(t, "chat-1", chat.ID)
	chats.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrCreateActiveCreatesWhenNoneOpen(t *testing.T) {
	chats := new(MockChatRepository)
	dispatcher := &recordingDispatcher{}
	svc := newChatServiceForTest(chats, new(MockOperatorRepository), dispatcher)

	chats.On("GetActiveByUser", mock.Anything, "user-1").Return(nil, pgx.ErrNoRows)
	chats.On("Create", mock.Anything, mock.Anything).Return(nil)

	chat, err := svc.GetOrCreateActive(context.Background(), "user-1", domain.ChatSourceTelegram)
	require.NoError(t, err)
	assert.Equal(t, domain.ChatStatusWaiting, chat.Status)
	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventChatCreated, dispatcher.published[0].Type)
}

func TestSearchChatsMatchesUserNameAndTags(t *testing.T) {
	chats := new(MockChatRepository)
	operators := new(MockOperatorRepository)
	users := new(MockUserRepository)
	messages := new(MockMessageRepository)
	svc := NewChatService(ChatDependencies{
		ChatRepo:     chats,
		OperatorRepo: operators,
		MessageRepo:  messages,
		UserRepo:     users,
		Dispatcher:   &recordingDispatcher{},
	})

	first := "Ann"
	chats.On("ListWithFilter", mock.Anything, mock.Anything).Return([]domain.Chat{
		{ID: "chat-1", UserID: "user-1", Status: domain.ChatStatusWaiting, Tags: []string{"billing"}},
		{ID: "chat-2", UserID: "user-2", Status: domain.ChatStatusWaiting},
	}, nil)
	users.On("GetByID", mock.Anything, "user-1").Return(&domain.User{ID: "user-1", FirstName: &first}, nil)
	users.On("GetByID", mock.Anything, "user-2").Return(nil, pgx.ErrNoRows)
	messages.On("LastByChat", mock.Anything, mock.Anything).Return(nil, pgx.ErrNoRows)

	results, err := svc.SearchChats(context.Background(), "ann", repository.ChatFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chat-1", results[0].Chat.ID)
}
