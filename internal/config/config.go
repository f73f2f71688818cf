package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"prepwise/interview/internal/models"
)

// service config, loaded from the environment
type Config struct {
	Port           string
	AllowedOrigins []string

	MongoURI    string
	MongoDBName string

	// users database; sqlite file when it has no postgres scheme
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration

	// events are disabled when empty
	RedisAddr string

	Provider        string
	PublicFeedLimit int64

	ExportEnabled  bool
	ExportSchedule string
	ExportDir      string
	ExportLookback time.Duration
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		AllowedOrigins:  splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		// the expiry sweep uses transactions, so this must be a replica set or mongos
		MongoURI:        getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDBName:     getEnvOrDefault("MONGO_DB_NAME", "prepwise"),
		DatabaseDSN:     getEnvOrDefault("DATABASE_DSN", "prepwise_users.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 24*time.Hour),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		Provider:        getEnvOrDefault("AI_PROVIDER", "gemini"),
		PublicFeedLimit: int64(getEnvInt("PUBLIC_FEED_LIMIT", models.DefaultPublicFeedSize)),
		ExportEnabled:   getEnvOrDefault("FEEDBACK_EXPORT_ENABLED", "false") == "true",
		ExportSchedule:  getEnvOrDefault("FEEDBACK_EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:       getEnvOrDefault("FEEDBACK_EXPORT_DIR", "./exports"),
		ExportLookback:  getEnvDuration("FEEDBACK_EXPORT_LOOKBACK", 24*time.Hour),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if config.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if config.PublicFeedLimit <= 0 {
		return errors.New("PUBLIC_FEED_LIMIT must be positive")
	}
	// Gemini validation is handled by gemini.NewConfig()
	return nil
}

// UsesPostgres reports whether DatabaseDSN points at postgres rather than a sqlite file
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseDSN, "postgres://") ||
		strings.HasPrefix(c.DatabaseDSN, "postgresql://") ||
		strings.Contains(c.DatabaseDSN, "host=")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
