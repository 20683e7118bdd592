package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/service"
)

func chatSummary(chat *domain.Chat) dto.ChatSummary {
	return dto.ChatSummary{
		ID:                 chat.ID,
		UserID:             chat.UserID,
		OperatorID:         chat.OperatorID,
		Status:             chat.Status,
		Priority:           chat.Priority,
		Source:             chat.Source,
		Tags:               chat.Tags,
		EscalationReason:   chat.EscalationReason,
		FirstOperatorReply: chat.FirstOperatorReply,
		ClosedAt:           chat.ClosedAt,
		CreatedAt:          chat.CreatedAt,
		UpdatedAt:          chat.UpdatedAt,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:                msg.ID,
		ChatID:            msg.ChatID,
		AuthorType:        msg.AuthorType,
		AuthorID:          msg.AuthorID,
		TelegramMessageID: msg.TelegramMessageID,
		Text:              msg.Text,
		MediaType:         msg.MediaType,
		MediaFileID:       msg.MediaFileID,
		IsRead:            msg.IsRead,
		EditedAt:          msg.EditedAt,
		CreatedAt:         msg.CreatedAt,
	}
}

func operatorResponse(operator *domain.Operator) dto.OperatorResponse {
	return dto.OperatorResponse{
		ID:          operator.ID,
		Name:        operator.Name,
		Email:       operator.Email,
		Role:        operator.Role,
		IsActive:    operator.IsActive,
		MaxChats:    operator.MaxChats,
		LastLoginAt: operator.LastLoginAt,
		CreatedAt:   operator.CreatedAt,
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		TelegramID:   user.TelegramID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		LanguageCode: user.LanguageCode,
		Balance:      user.Balance,
		DealsCount:   user.DealsCount,
		IsBlocked:    user.IsBlocked,
		IsVerified:   user.IsVerified,
		Flags:        user.Flags,
		LastActivity: user.LastActivity,
		CreatedAt:    user.CreatedAt,
	}
}

func noteResponse(note *domain.Note) dto.NoteResponse {
	return dto.NoteResponse{
		ID:         note.ID,
		ChatID:     note.ChatID,
		OperatorID: note.OperatorID,
		Body:       note.Body,
		IsInternal: note.IsInternal,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
}

func caseResponse(c *domain.Case) dto.CaseResponse {
	return dto.CaseResponse{
		ID:          c.ID,
		ChatID:      c.ChatID,
		OpenedBy:    c.OpenedBy,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Priority:    c.Priority,
		ResolvedAt:  c.ResolvedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func cannedResponseItem(cr *domain.CannedResponse) dto.CannedResponseItem {
	return dto.CannedResponseItem{
		ID:         cr.ID,
		Title:      cr.Title,
		Body:       cr.Body,
		Category:   cr.Category,
		UsageCount: cr.UsageCount,
		CreatedBy:  cr.CreatedBy,
		IsActive:   cr.IsActive,
		CreatedAt:  cr.CreatedAt,
		UpdatedAt:  cr.UpdatedAt,
	}
}

func attachmentResponse(a *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        a.ID,
		ChatID:    a.ChatID,
		MessageID: a.MessageID,
		FileName:  a.FileName,
		MimeType:  a.MimeType,
		SizeBytes: a.SizeBytes,
		CreatedAt: a.CreatedAt,
	}
}

func searchItem(result *service.ChatSearchResult) dto.ChatSearchItem {
	return dto.ChatSearchItem{
		Chat:            chatSummary(&result.Chat),
		UserName:        result.UserName,
		LastMessageText: result.LastMessageText,
	}
}

func parseChatQuery(c *fiber.Ctx) repository.ChatFilter {
	filter := repository.ChatFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ChatStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if sourceStr := c.Query("source"); sourceStr != "" {
		for _, part := range strings.Split(sourceStr, ",") {
			filter.Sources = append(filter.Sources, domain.ChatSource(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.ChatPriority(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if operatorID := c.Query("operator_id"); operatorID != "" {
		filter.OperatorID = &operatorID
	}
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 20)
	filter.Offset = (page - 1) * limit
	filter.Limit = limit
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBool(val string) *bool {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}
