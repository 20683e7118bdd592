package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Telegram     TelegramConfig
	RAG          RAGConfig
	Uploads      UploadsConfig
	Cache        CacheConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret            string
	JWTRefreshSecret     string
	AccessTokenTTLMin    int
	RefreshTokenTTLHours int
	BcryptCost           int
}

// TelegramConfig configures the bot client and webhook.
type TelegramConfig struct {
	BotToken    string
	WebhookURL  string
	WebhookPath string
}

// RAGConfig configures the answer backend client.
type RAGConfig struct {
	BaseURL        string
	TimeoutSeconds int
	Temperature    float64
	MaxTokens      int
	TopK           int
	MinSimilarity  float64
}

// UploadsConfig controls attachment storage on local disk.
type UploadsConfig struct {
	Dir       string
	MaxSizeMB int
}

// CacheConfig controls the GET response cache.
type CacheConfig struct {
	Enabled    bool
	TTLSeconds int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-console"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("DATABASE_URL", os.Getenv("POSTGRES_DSN")),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 20)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", "dev-secret"),
			JWTRefreshSecret:     getEnv("JWT_REFRESH_SECRET", "dev-refresh-secret"),
			AccessTokenTTLMin:    getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshTokenTTLHours: getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_HOURS", 168),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Telegram: TelegramConfig{
			BotToken:    os.Getenv("TG_BOT_TOKEN"),
			WebhookURL:  os.Getenv("TG_WEBHOOK_URL"),
			WebhookPath: getEnv("TG_WEBHOOK_PATH", "/telegram/webhook"),
		},
		RAG: RAGConfig{
			BaseURL:        getEnv("RAG_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("RAG_TIMEOUT_SECONDS", 15),
			Temperature:    getEnvAsFloat("RAG_TEMPERATURE", 0.3),
			MaxTokens:      getEnvAsInt("RAG_MAX_TOKENS", 512),
			TopK:           getEnvAsInt("RAG_TOP_K", 5),
			MinSimilarity:  getEnvAsFloat("RAG_MIN_SIMILARITY", 0.5),
		},
		Uploads: UploadsConfig{
			Dir:       getEnv("UPLOADS_DIR", "uploads"),
			MaxSizeMB: getEnvAsInt("UPLOADS_MAX_SIZE_MB", 20),
		},
		Cache: CacheConfig{
			Enabled:    getEnvAsBool("CACHE_ENABLED", true),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 30),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if strings.TrimSpace(cfg.Telegram.BotToken) == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("TG_BOT_TOKEN is required in production")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTTL returns the access token lifetime.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMin) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLHours) * time.Hour
}

// Timeout returns the RAG call deadline.
func (r RAGConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
