package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/observability"
	"github.com/spec-kit/support-console/internal/service"
)

// StatsHandler serves console metrics.
type StatsHandler struct {
	chats   *service.ChatService
	metrics *observability.Metrics
}

// NewStatsHandler constructs handler.
func NewStatsHandler(chatService *service.ChatService, metrics *observability.Metrics) *StatsHandler {
	return &StatsHandler{chats: chatService, metrics: metrics}
}

// GetStats GET /api/stats.
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.chats.GetStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:            stats.Total,
		Waiting:          stats.Waiting,
		InProgress:       stats.InProgress,
		Closed:           stats.Closed,
		Escalated:        stats.Escalated,
		AvgFirstReplySec: stats.AvgFirstReplySec,
		AvgResolutionSec: stats.AvgResolutionSec,
	}})
}

// GetRuntimeStats GET /api/stats/runtime returns in-process request counters.
func (h *StatsHandler) GetRuntimeStats(c *fiber.Ctx) error {
	requests, errs := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests": requests,
		"errors":   errs,
	}})
}
