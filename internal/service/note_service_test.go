package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

func TestCreateNoteRequiresExistingChat(t *testing.T) {
	notes := new(MockNoteRepository)
	chats := new(MockChatRepository)
	svc := NewNoteService(notes, chats)

	chats.On("GetByID", mock.Anything, "chat-404").Return(nil, pgx.ErrNoRows)

	_, err := svc.CreateNote(context.Background(), "chat-404", "op-1", "call back tomorrow", true)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
	notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateNoteTrimsBody(t *testing.T) {
	notes := new(MockNoteRepository)
	chats := new(MockChatRepository)
	svc := NewNoteService(notes, chats)

	chats.On("GetByID", mock.Anything, "chat-1").Return(&domain.Chat{ID: "chat-1"}, nil)
	notes.On("Create", mock.Anything, mock.Anything).Return(nil)

	note, err := svc.CreateNote(context.Background(), "chat-1", "op-1", "  refund approved  ", false)
	require.NoError(t, err)
	assert.Equal(t, "refund approved", note.Body)
	assert.False(t, note.IsInternal)
}

func TestUpdateNoteOnlyByAuthor(t *testing.T) {
	notes := new(MockNoteRepository)
	svc := NewNoteService(notes, new(MockChatRepository))

	notes.On("GetByID", mock.Anything, "note-1").Return(&domain.Note{
		ID:         "note-1",
		OperatorID: "op-1",
		Body:       "original",
	}, nil)

	_, err := svc.UpdateNote(context.Background(), "note-1", "op-2", "edited", true)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
	notes.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteNoteAllowedForSupervisor(t *testing.T) {
	notes := new(MockNoteRepository)
	svc := NewNoteService(notes, new(MockChatRepository))

	notes.On("GetByID", mock.Anything, "note-1").Return(&domain.Note{
		ID:         "note-1",
		OperatorID: "op-1",
	}, nil)
	notes.On("Delete", mock.Anything, "note-1").Return(nil)

	err := svc.DeleteNote(context.Background(), "note-1", "op-9", domain.OperatorRoleSupervisor)
	require.NoError(t, err)
	notes.AssertExpectations(t)
}

func TestDeleteNoteForbiddenForOtherOperator(t *testing.T) {
	notes := new(MockNoteRepository)
	svc := NewNoteService(notes, new(MockChatRepository))

	notes.On("GetByID", mock.Anything, "note-1").Return(&domain.Note{
		ID:         "note-1",
		OperatorID: "op-1",
	}, nil)

	err := svc.DeleteNote(context.Background(), "note-1", "op-2", domain.OperatorRoleOperator)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}
