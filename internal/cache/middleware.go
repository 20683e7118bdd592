package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "httpcache:"

// entry is the stored representation of a cached response.
type entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Client is the subset of redis commands the middleware needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Middleware caches successful GET responses in Redis. The key is built from
// method, path, query string and the values of any configured vary headers.
// Responses carry X-Cache: HIT|MISS and X-Cache-Key.
type Middleware struct {
	client  Client
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewMiddleware builds the cache layer. A nil client disables caching.
func NewMiddleware(client Client, ttl time.Duration, enabled bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		client:  client,
		ttl:     ttl,
		enabled: enabled && client != nil,
		logger:  logger,
	}
}

// Handler returns the caching middleware for GET routes.
func (m *Middleware) Handler(varyHeaders ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.enabled || c.Method() != fiber.MethodGet {
			return c.Next()
		}

		key := m.buildKey(c, varyHeaders)
		c.Set("X-Cache-Key", key)

		if data, err := m.client.Get(c.UserContext(), key).Bytes(); err == nil {
			var cached entry
			if err := json.Unmarshal(data, &cached); err == nil {
				c.Set("X-Cache", "HIT")
				c.Set(fiber.HeaderContentType, cached.ContentType)
				return c.Status(cached.Status).Send(cached.Body)
			}
		} else if err != redis.Nil {
			m.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}

		c.Set("X-Cache", "MISS")
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status == fiber.StatusOK {
			cached := entry{
				Status:      status,
				ContentType: string(c.Response().Header.ContentType()),
				Body:        append([]byte(nil), c.Response().Body()...),
			}
			if data, err := json.Marshal(cached); err == nil {
				if err := m.client.Set(c.UserContext(), key, data, m.ttl).Err(); err != nil {
					m.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
				}
			}
		}
		return nil
	}
}

// InvalidateAfter wraps mutation routes: when the handler succeeds, cached
// entries matching the patterns are dropped best-effort.
func (m *Middleware) InvalidateAfter(patterns ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if !m.enabled {
			return nil
		}
		if status := c.Response().StatusCode(); status >= 200 && status < 400 {
			m.Invalidate(c.UserContext(), patterns...)
		}
		return nil
	}
}

// Invalidate removes cached entries matching the given glob patterns.
func (m *Middleware) Invalidate(ctx context.Context, patterns ...string) {
	if !m.enabled {
		return
	}
	for _, pattern := range patterns {
		if !strings.HasPrefix(pattern, keyPrefix) {
			pattern = keyPrefix + pattern
		}
		iter := m.client.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			m.logger.Warn("cache invalidation scan failed", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		if len(keys) > 0 {
			if err := m.client.Del(ctx, keys...).Err(); err != nil {
				m.logger.Warn("cache invalidation delete failed", zap.String("pattern", pattern), zap.Error(err))
			}
		}
	}
}

func (m *Middleware) buildKey(c *fiber.Ctx, varyHeaders []string) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(c.Method())
	b.WriteString("|")
	b.WriteString(c.Path())
	b.WriteString("|")
	b.WriteString(string(c.Request().URI().QueryString()))
	for _, header := range varyHeaders {
		b.WriteString("|")
		b.WriteString(header)
		b.WriteString("=")
		b.WriteString(c.Get(header))
	}
	return b.String()
}
