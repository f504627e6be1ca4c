package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/content-lifecycle-console/internal/models"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Remote content API configuration
	Remote RemoteConfig

	// Background refresh configuration
	Refresh RefreshConfig

	// Moderation audit trail configuration
	Audit AuditConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSize   int64 // in bytes
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// RemoteConfig holds settings for the remote content API
type RemoteConfig struct {
	BaseURL  string
	Timeout  time.Duration
	MaxPages int
}

// RefreshConfig controls the scheduled reload of moderation queues
type RefreshConfig struct {
	Enabled  bool
	Schedule string   // cron expression, e.g. "@every 2m"
	Statuses []string // statuses reloaded on each run; "all" reloads every status
}

// AuditConfig controls how moderation events are buffered before they are written
type AuditConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxUploadSize:   getInt64Env("MAX_UPLOAD_SIZE", 200*1024*1024), // 200MB
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "content_lifecycle"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Remote: RemoteConfig{
			BaseURL:  getEnv("REMOTE_BASE_URL", "http://localhost:8000/api"),
			Timeout:  getDurationEnv("REMOTE_TIMEOUT", 15*time.Second),
			MaxPages: getIntEnv("REMOTE_MAX_PAGES", 20),
		},
		Refresh: RefreshConfig{
			Enabled:  getBoolEnv("REFRESH_ENABLED", true),
			Schedule: getEnv("REFRESH_SCHEDULE", "@every 2m"),
			Statuses: getListEnv("REFRESH_STATUSES", []string{string(models.StatusPendingApproval)}),
		},
		Audit: AuditConfig{
			BufferSize:    getIntEnv("AUDIT_BUFFER_SIZE", 1024),
			BatchSize:     getIntEnv("AUDIT_BATCH_SIZE", 100),
			FlushInterval: getDurationEnv("AUDIT_FLUSH_INTERVAL", 2*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("REMOTE_BASE_URL is required")
	}
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("REMOTE_BASE_URL must be an absolute http(s) URL, got %q", c.Remote.BaseURL)
	}
	if c.Remote.MaxPages < 1 {
		return fmt.Errorf("REMOTE_MAX_PAGES must be at least 1")
	}
	if c.Refresh.Enabled {
		if c.Refresh.Schedule == "" {
			return fmt.Errorf("REFRESH_SCHEDULE is required when REFRESH_ENABLED is true")
		}
		if _, err := cron.ParseStandard(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.Refresh.Schedule, err)
		}
	}
	for _, status := range c.Refresh.Statuses {
		if status == "all" {
			continue
		}
		if _, err := models.ParseStatus(status); err != nil || status == "" {
			return fmt.Errorf("invalid REFRESH_STATUSES entry %q", status)
		}
	}
	if c.Audit.BatchSize < 1 || c.Audit.BufferSize < 1 {
		return fmt.Errorf("AUDIT_BATCH_SIZE and AUDIT_BUFFER_SIZE must be at least 1")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
