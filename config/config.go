package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"signalBridge/internal/adapters/logger" // Import the logger package for LogLevel
)

const (
	EnvPractice = "practice"
	EnvLive     = "live"
)

// Config holds all application configuration.
type Config struct {
	// Webhook server
	HTTPAddr        string
	WebhookToken    string
	ShutdownTimeout time.Duration

	// OANDA API
	APIToken      string
	AccountID     string
	Environment   string // practice or live
	BaseURL       string // Overrides the environment URL when set
	BrokerTimeout time.Duration

	// Risk
	MaxUnits int64 // 0 disables the size limit

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFile  string
}

// IsLive reports whether orders go to the live environment.
func (c *Config) IsLive() bool {
	return c.Environment == EnvLive
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Webhook server
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.WebhookToken = getEnv("WEBHOOK_TOKEN", "")
	if cfg.WebhookToken == "" {
		errs = append(errs, "WEBHOOK_TOKEN must be set")
	}

	shutdownSeconds, err := getEnvAsIntRequired("SHUTDOWN_TIMEOUT_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SHUTDOWN_TIMEOUT_SECONDS: %v", err))
	} else if shutdownSeconds <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	cfg.ShutdownTimeout = time.Duration(shutdownSeconds) * time.Second

	// OANDA API
	cfg.APIToken = getEnv("OANDA_API_TOKEN", "")
	if cfg.APIToken == "" {
		errs = append(errs, "OANDA_API_TOKEN must be set")
	}
	cfg.AccountID = getEnv("OANDA_ACCOUNT_ID", "")
	if cfg.AccountID == "" {
		errs = append(errs, "OANDA_ACCOUNT_ID must be set")
	}

	cfg.Environment = strings.ToLower(getEnv("OANDA_ENV", EnvPractice)) // Default to practice for safety
	if cfg.Environment != EnvPractice && cfg.Environment != EnvLive {
		errs = append(errs, fmt.Sprintf("OANDA_ENV must be %q or %q, got %q", EnvPractice, EnvLive, cfg.Environment))
	}
	cfg.BaseURL = getEnv("OANDA_BASE_URL", "")

	brokerSeconds, err := getEnvAsIntRequired("BROKER_TIMEOUT_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BROKER_TIMEOUT_SECONDS: %v", err))
	} else if brokerSeconds <= 0 {
		errs = append(errs, "BROKER_TIMEOUT_SECONDS must be positive")
	}
	cfg.BrokerTimeout = time.Duration(brokerSeconds) * time.Second

	// Risk
	cfg.MaxUnits, err = getEnvAsInt64Required("MAX_UNITS", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_UNITS: %v", err))
	} else if cfg.MaxUnits < 0 {
		errs = append(errs, "MAX_UNITS cannot be negative")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFile = getEnv("LOG_FILE", "")

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsInt64Required(key string, defaultValue int64) (int64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
