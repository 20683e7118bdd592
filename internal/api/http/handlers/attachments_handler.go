package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/pkg/apperrors"
)

// AttachmentsHandler manages file upload endpoints.
type AttachmentsHandler struct {
	attachments *service.AttachmentService
	maxSizeMB   int
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService, maxSizeMB int) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachmentService, maxSizeMB: maxSizeMB}
}

// Upload POST /api/chats/:id/attachments (multipart form, field "file").
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("multipart field 'file' required", nil)
	}
	if h.maxSizeMB > 0 && fileHeader.Size > int64(h.maxSizeMB)*1024*1024 {
		return apperrors.NewValidationError("file too large", map[string]any{"max_size_mb": h.maxSizeMB})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError("failed to read upload", err)
	}
	defer file.Close()

	var messageID *string
	if id := c.FormValue("message_id"); id != "" {
		messageID = &id
	}
	uploadedBy := principal.OperatorID

	attachment, err := h.attachments.Upload(c.Context(), service.UploadInput{
		ChatID:     c.Params("id"),
		MessageID:  messageID,
		FileName:   fileHeader.Filename,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		UploadedBy: &uploadedBy,
		Content:    file,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// ListByChat GET /api/chats/:id/attachments.
func (h *AttachmentsHandler) ListByChat(c *fiber.Ctx) error {
	attachments, err := h.attachments.ListByChat(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Download GET /api/attachments/:id/download.
func (h *AttachmentsHandler) Download(c *fiber.Ctx) error {
	attachment, err := h.attachments.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Download(attachment.FilePath, attachment.FileName)
}

// Delete DELETE /api/attachments/:id.
func (h *AttachmentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.attachments.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ok": true}})
}

// Cleanup POST /api/attachments/cleanup (admin) removes orphaned files.
func (h *AttachmentsHandler) Cleanup(c *fiber.Ctx) error {
	removed, err := h.attachments.CleanupOrphanedFiles(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": removed}})
}
