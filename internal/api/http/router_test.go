package http

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/api/http/handlers"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/cache"
)

// newRoutedApp registers the full route table with inert handlers.
// Registration never invokes a handler, so nil services are fine here.
func newRoutedApp() *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, RouteConfig{
		Health:          handlers.NewHealthHandler("support-console", "test", nil, nil),
		Auth:            handlers.NewAuthHandler(nil),
		Chats:           handlers.NewChatsHandler(nil),
		Messages:        handlers.NewMessagesHandler(nil),
		Notes:           handlers.NewNotesHandler(nil),
		Cases:           handlers.NewCasesHandler(nil),
		CannedResponses: handlers.NewCannedResponsesHandler(nil),
		Attachments:     handlers.NewAttachmentsHandler(nil, 0),
		Users:           handlers.NewUsersHandler(nil),
		Stats:           handlers.NewStatsHandler(nil, nil),
		Telegram:        handlers.NewTelegramHandler(nil, zap.NewNop()),
		AuthMiddleware:  auth.NewMiddleware(nil, nil),
		Cache:           cache.NewMiddleware(nil, time.Minute, false, zap.NewNop()),
		WebhookPath:     "/telegram/webhook",
	})
	return app
}

func registeredRoutes(app *fiber.App) map[string]bool {
	routes := make(map[string]bool)
	for _, route := range app.GetRoutes() {
		routes[route.Method+" "+route.Path] = true
	}
	return routes
}

func TestRegisterRoutesChatSurface(t *testing.T) {
	routes := registeredRoutes(newRoutedApp())

	for _, want := range []string{
		"GET /api/chats/:id",
		"POST /api/chats/:id",
		"PUT /api/chats/:id/priority",
		"PATCH /api/chats/:id/priority",
		"POST /api/chats/:id/take",
		"POST /api/chats/:id/close",
		"POST /api/chats/:id/escalate",
		"POST /api/chats/:id/tags",
		"GET /api/chats/search",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestRegisterRoutesAuthAndWebhook(t *testing.T) {
	routes := registeredRoutes(newRoutedApp())

	for _, want := range []string{
		"POST /telegram/webhook",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"GET /health/live",
		"GET /health/ready",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
