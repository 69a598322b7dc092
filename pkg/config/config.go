package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `validate:"required"`
	LogLevel   string

	GeminiAPIKey string
	GeminiModel  string `validate:"required"`

	RateLimit  int           `validate:"min=1"`
	RateWindow time.Duration `validate:"min=1s"`

	// RedisAddr enables the shared rate-limit store when set; empty means
	// the in-process limiter.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// PostgresHost enables result persistence when set.
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	FallbackOnError bool
	SnapshotEnabled bool
	PageLoadTimeout time.Duration
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RateLimit:        getEnvAsInt("RATE_LIMIT", 20),
		RateWindow:       getEnvAsDuration("RATE_WINDOW_MS", 60_000) * time.Millisecond,
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "context"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "context"),
		FallbackOnError:  getEnvAsBool("FALLBACK_ON_ERROR", true),
		SnapshotEnabled:  getEnvAsBool("PAGE_SNAPSHOT_ENABLED", false),
		PageLoadTimeout:  getEnvAsDuration("PAGE_LOAD_TIMEOUT_SECONDS", 30) * time.Second,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// PostgresDSN builds the connection string, or "" when persistence is disabled.
func (c *Config) PostgresDSN() string {
	if c.PostgresHost == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback))
}
