package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// NotesHandler manages chat note endpoints.
type NotesHandler struct {
	notes *service.NoteService
}

// NewNotesHandler constructs handler.
func NewNotesHandler(noteService *service.NoteService) *NotesHandler {
	return &NotesHandler{notes: noteService}
}

// CreateNote POST /api/chats/:id/notes.
func (h *NotesHandler) CreateNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.notes.CreateNote(c.Context(), c.Params("id"), principal.OperatorID, req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": noteResponse(note)})
}

// ListNotes GET /api/chats/:id/notes.
func (h *NotesHandler) ListNotes(c *fiber.Ctx) error {
	notes, err := h.notes.ListByChat(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, noteResponse(&notes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateNote PATCH /api/notes/:id.
func (h *NotesHandler) UpdateNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.notes.UpdateNote(c.Context(), c.Params("id"), principal.OperatorID, req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": noteResponse(note)})
}

// DeleteNote DELETE /api/notes/:id.
func (h *NotesHandler) DeleteNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	if err := h.notes.DeleteNote(c.Context(), c.Params("id"), principal.OperatorID, principal.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ok": true}})
}
