package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Environment string
	HTTPPort    string
	Database    DatabaseConfig
	Chat        ChatConfig
}

// DatabaseConfig is the Postgres connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ChatConfig configures the chat-completion proxy.
type ChatConfig struct {
	APIURL string
	APIKey string
}

// Load builds the configuration from environment variables.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Environment: env,
		HTTPPort:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "academy"),
			SSLMode:  sslMode(env),
		},
		Chat: ChatConfig{
			APIURL: getEnv("CHAT_API_URL", "https://api-inference.huggingface.co/models/google/flan-t5-xxl"),
			APIKey: getEnv("CHAT_API_KEY", ""),
		},
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	var errs []string

	if c.Database.User == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.Database.Password == "" && c.Environment == "production" {
		errs = append(errs, "DB_PASSWORD is required in production")
	}
	if os.Getenv("JWT_ACCESS_SECRET") == "" {
		errs = append(errs, "JWT_ACCESS_SECRET is required")
	}
	if os.Getenv("JWT_REFRESH_SECRET") == "" {
		errs = append(errs, "JWT_REFRESH_SECRET is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, ", "))
	}
	return nil
}

func sslMode(env string) string {
	if env == "production" {
		return "require"
	}
	return "disable"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
