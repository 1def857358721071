// Package config loads application configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	UserID   string
	Timezone string

	// Database. DatabaseURL selects PostgreSQL when set; otherwise the
	// embedded SQLite database at SQLitePath is used.
	DatabaseURL string
	SQLitePath  string

	// Redis (optional, enables the cross-process per-user lock)
	RedisURL string

	// RabbitMQ (optional, enables the broker-backed event bus)
	RabbitMQURL string

	// Scheduling defaults, used when the user has no stored memory.
	WorkdayStartHour  int
	WorkdayEndHour    int
	MaxExtensionHours int
	BufferMinutes     int
	MaxDaysAhead      int

	// Calendar
	CalendarProvider   string // "caldav", "google" or "" for none
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVPath         string
	GoogleCalendarID   string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	// Assistant (optional)
	AssistantTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		UserID:   getEnv("TEMPORA_USER_ID", "00000000-0000-0000-0000-000000000001"),
		Timezone: getEnv("TEMPORA_TIMEZONE", "UTC"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("TEMPORA_SQLITE_PATH", defaultSQLitePath()),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		WorkdayStartHour:  getIntEnv("TEMPORA_WORKDAY_START", 9),
		WorkdayEndHour:    getIntEnv("TEMPORA_WORKDAY_END", 17),
		MaxExtensionHours: getIntEnv("TEMPORA_MAX_EXTENSION_HOURS", 2),
		BufferMinutes:     getIntEnv("TEMPORA_BUFFER_MINUTES", 5),
		MaxDaysAhead:      getIntEnv("TEMPORA_MAX_DAYS_AHEAD", 7),

		CalendarProvider:   getEnv("TEMPORA_CALENDAR_PROVIDER", ""),
		CalDAVURL:          getEnv("CALDAV_URL", ""),
		CalDAVUsername:     getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("CALDAV_PASSWORD", ""),
		CalDAVPath:         getEnv("CALDAV_CALENDAR_PATH", ""),
		GoogleCalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		AssistantTimeout: getDurationEnv("TEMPORA_ASSISTANT_TIMEOUT", 10*time.Second),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tempora/tempora.db"
	}
	return filepath.Join(home, ".tempora", "tempora.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
