package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/support-console/internal/api/http/handlers"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/cache"
	"github.com/spec-kit/support-console/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Chats           *handlers.ChatsHandler
	Messages        *handlers.MessagesHandler
	Notes           *handlers.NotesHandler
	Cases           *handlers.CasesHandler
	CannedResponses *handlers.CannedResponsesHandler
	Attachments     *handlers.AttachmentsHandler
	Users           *handlers.UsersHandler
	Stats           *handlers.StatsHandler
	Telegram        *handlers.TelegramHandler
	AuthMiddleware  *auth.Middleware
	Cache           *cache.Middleware
	WebhookPath     string
}

const chatCachePatterns = "GET|/api/chats*"

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	webhookLimiter := limiter.New(limiter.Config{Max: 120, Expiration: time.Minute})
	app.Post(cfg.WebhookPath, webhookLimiter, cfg.Telegram.Webhook)

	api := app.Group("/api")

	authLimiter := limiter.New(limiter.Config{Max: 20, Expiration: time.Minute})
	authGroup := api.Group("/auth", authLimiter)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := api.Group("", cfg.AuthMiddleware.RequireOperator)

	invalidateChats := cfg.Cache.InvalidateAfter(chatCachePatterns, "GET|/api/stats*")

	chats := protected.Group("/chats")
	chats.Get("/", cfg.Cache.Handler("Authorization"), cfg.Chats.ListChats)
	chats.Get("/search", cfg.Chats.SearchChats)
	chats.Get("/:id", cfg.Cache.Handler("Authorization"), cfg.Chats.GetChat)
	chats.Post("/:id", invalidateChats, cfg.Chats.UpdateChat)
	chats.Post("/:id/take", invalidateChats, cfg.Chats.TakeChat)
	chats.Post("/:id/close", invalidateChats, cfg.Chats.CloseChat)
	chats.Post("/:id/escalate", invalidateChats, cfg.Chats.EscalateChat)
	chats.Put("/:id/priority", invalidateChats, cfg.Chats.UpdatePriority)
	chats.Patch("/:id/priority", invalidateChats, cfg.Chats.UpdatePriority)
	chats.Post("/:id/tags", invalidateChats, cfg.Chats.AddTags)

	chats.Get("/:id/messages", cfg.Messages.ListMessages)
	chats.Post("/:id/messages", invalidateChats, cfg.Messages.CreateMessage)
	chats.Post("/:id/messages/read", cfg.Messages.MarkRead)
	chats.Get("/:id/messages/unread", cfg.Messages.UnreadCount)

	chats.Get("/:id/notes", cfg.Notes.ListNotes)
	chats.Post("/:id/notes", cfg.Notes.CreateNote)
	protected.Patch("/notes/:id", cfg.Notes.UpdateNote)
	protected.Delete("/notes/:id", cfg.Notes.DeleteNote)

	chats.Get("/:id/cases", cfg.Cases.ListCases)
	chats.Post("/:id/cases", cfg.Cases.OpenCase)
	protected.Get("/cases/:id", cfg.Cases.GetCase)
	protected.Patch("/cases/:id/status", cfg.Cases.UpdateStatus)

	chats.Get("/:id/attachments", cfg.Attachments.ListByChat)
	chats.Post("/:id/attachments", cfg.Attachments.Upload)
	protected.Get("/attachments/:id/download", cfg.Attachments.Download)
	protected.Delete("/attachments/:id", cfg.Attachments.Delete)
	protected.Post("/attachments/cleanup", auth.RequireRole(domain.OperatorRoleAdmin), cfg.Attachments.Cleanup)

	canned := protected.Group("/canned-responses")
	canned.Get("/", cfg.CannedResponses.List)
	canned.Post("/", cfg.CannedResponses.Create)
	canned.Get("/:id", cfg.CannedResponses.Get)
	canned.Put("/:id", cfg.CannedResponses.Update)
	canned.Delete("/:id", cfg.CannedResponses.Delete)
	canned.Post("/:id/use", cfg.CannedResponses.Use)

	operators := protected.Group("/operators")
	operators.Post("/", auth.RequireRole(domain.OperatorRoleAdmin), cfg.Auth.CreateOperator)
	operators.Get("/available", cfg.Chats.AvailableOperators)

	protected.Get("/stats", cfg.Cache.Handler("Authorization"), cfg.Stats.GetStats)
	protected.Get("/stats/runtime", cfg.Stats.GetRuntimeStats)

	users := protected.Group("/users")
	users.Get("/", cfg.Users.ListUsers)
	users.Get("/:id", cfg.Users.GetUser)
	users.Patch("/:id/block", cfg.Users.SetBlocked)
	users.Patch("/:id/verify", cfg.Users.SetVerified)
}
