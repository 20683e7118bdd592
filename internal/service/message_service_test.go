package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

func newMessageServiceForTest(messages *MockMessageRepository, chats *MockChatRepository, dispatcher *recordingDispatcher) *MessageService {
	return NewMessageService(MessageDependencies{
		MessageRepo: messages,
		ChatRepo:    chats,
		Dispatcher:  dispatcher,
	})
}

func TestCreateOperatorMessageRejectsUnassignedOperator(t *testing.T) {
	messages := new(MockMessageRepository)
	chats := new(MockChatRepository)
	svc := newMessageServiceForTest(messages, chats, &recordingDispatcher{})

	assignee := "op-1"
	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{
		ID:         "chat-1",
		OperatorID: &assignee,
		Status:     domain.ChatStatusInProgress,
	}, nil)

	_, err := svc.CreateOperatorMessage(context.Background(), MessageInput{
		ChatID:   "chat-1",
		AuthorID: "op-2",
		Text:     "hi",
	})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOperatorMessageMarksFirstReply(t *testing.T) {
	messages := new(MockMessageRepository)
	chats := new(MockChatRepository)
	dispatcher := &recordingDispatcher{}
	svc := newMessageServiceForTest(messages, chats, dispatcher)

	assignee := "op-1"
	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{
		ID:         "chat-1",
		OperatorID: &assignee,
		Status:     domain.ChatStatusInProgress,
	}, nil)
	messages.On("Create", mock.Anything, mock.Anything).Return(nil)
	chats.On("TouchActivity", mock.Anything, "chat-1").Return(nil)
	chats.On("SetFirstOperatorReply", mock.Anything, "chat-1").Return(nil)

	msg, err := svc.CreateOperatorMessage(context.Background(), MessageInput{
		ChatID:   "chat-1",
		AuthorID: "op-1",
		Text:     "  hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, domain.AuthorTypeOperator, msg.AuthorType)
	assert.True(t, msg.IsRead)
	chats.AssertExpectations(t)

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventMessageAdded, dispatcher.published[0].Type)
}

func TestCreateUserMessageTouchesChatActivity(t *testing.T) {
	messages := new(MockMessageRepository)
	chats := new(MockChatRepository)
	svc := newMessageServiceForTest(messages, chats, &recordingDispatcher{})

	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{
		ID:     "chat-1",
		Status: domain.ChatStatusWaiting,
	}, nil)
	messages.On("Create", mock.Anything, mock.Anything).Return(nil)
	chats.On("TouchActivity", mock.Anything, "chat-1").Return(nil)

	tgID := int64(900)
	msg, err := svc.CreateUserMessage(context.Background(), MessageInput{
		ChatID:            "chat-1",
		AuthorID:          "user-1",
		Text:              "помогите",
		TelegramMessageID: &tgID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorTypeUser, msg.AuthorType)
	assert.False(t, msg.IsRead)
	chats.AssertCalled(t, "TouchActivity", mock.Anything, "chat-1")
}

func TestCreateUserMessageRequiresTextOrMedia(t *testing.T) {
	messages := new(MockMessageRepository)
	chats := new(MockChatRepository)
	svc := newMessageServiceForTest(messages, chats, &recordingDispatcher{})

	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{ID: "chat-1"}, nil)

	_, err := svc.CreateUserMessage(context.Background(), MessageInput{
		ChatID: "chat-1",
		Text:   "   ",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateUserMessageAllowsMediaWithoutText(t *testing.T) {
	messages := new(MockMessageRepository)
	chats := new(MockChatRepository)
	svc := newMessageServiceForTest(messages, chats, &recordingDispatcher{})

	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{ID: "chat-1"}, nil)
	messages.On("Create", mock.Anything, mock.Anything).Return(nil)
	chats.On("TouchActivity", mock.Anything, "chat-1").Return(nil)

	mediaType := "photo"
	fileID := "tg-file-1"
	msg, err := svc.CreateUserMessage(context.Background(), MessageInput{
		ChatID:      "chat-1",
		MediaType:   &mediaType,
		MediaFileID: &fileID,
	})
	require.NoError(t, err)
	require.NotNil(t, msg.MediaFileID)
	assert.Equal(t, "tg-file-1", *msg.MediaFileID)
}

func TestTextPreviewTruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("опишите проблему ", 20)

	preview := textPreview(long, 120)
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 120, utf8.RuneCountInString(preview))
	assert.True(t, strings.HasSuffix(preview, "..."))

	assert.Equal(t, "привет", textPreview("  привет  ", 120))
	assert.Equal(t, "при", textPreview("привет", 3))
}
