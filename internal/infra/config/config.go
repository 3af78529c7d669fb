package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseDriver    string
	DatabaseURL       string
	LogLevel          string
	Environment       string
	CronSpecDailySend string
	CronTimezone      *time.Location
	TelegramToken     string // Optional; without it Telegram subscribers are logged only
	AdminTelegramID   int64  // Optional; enables admin bot commands
	PublicBaseURL     string // Used for unsubscribe links
	SendTimeout       time.Duration
	MetricsAddr       string // Optional, e.g. ":9090"
}

// IsProduction reports whether the app runs in a production-like environment.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseDriver = strings.ToLower(os.Getenv("DATABASE_DRIVER"))
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "sqlite3"
	}
	if cfg.DatabaseDriver != "sqlite3" && cfg.DatabaseDriver != "postgres" {
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: must be sqlite3 or postgres", cfg.DatabaseDriver)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseDriver == "postgres" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		cfg.DatabaseURL = "facts.db"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDailySend = os.Getenv("CRON_SPEC_DAILY_SEND")
	if cfg.CronSpecDailySend == "" {
		cfg.CronSpecDailySend = "0 9 * * *" // Default: 09:00 daily
	}

	tz := os.Getenv("CRON_TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	cfg.CronTimezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_TIMEZONE: %w", err)
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.PublicBaseURL = strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:8080"
	}

	cfg.SendTimeout = 10 * time.Second
	if v := os.Getenv("SEND_TIMEOUT"); v != "" {
		cfg.SendTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEND_TIMEOUT: %w", err)
		}
		if cfg.SendTimeout <= 0 {
			return nil, fmt.Errorf("invalid SEND_TIMEOUT: must be positive, got %s", v)
		}
	}

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}
