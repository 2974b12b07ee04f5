package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreSupabase = "supabase"
)

type Config struct {
	// Cloudinary
	CloudinaryCloudName       string
	CloudinaryUploadPreset    string
	CloudinaryAPIKey          string
	CloudinaryAPISecret       string
	CloudinaryAPIBaseURL      string
	CloudinaryDeliveryBaseURL string
	CloudinaryFolderPrefix    string
	HTTPTimeout               time.Duration

	// Document store
	DocumentStore string
	DatabaseURL   string
	SQLitePath    string

	// Supabase
	SupabaseURL             string
	SupabasePublishableKey  string
	SupabaseJWTSecret       string
	SupabasePropertiesTable string
	SupabaseSnapshotBucket  string

	// Import pipeline
	SourcesFile         string
	EnableDemoSource    bool
	RehostConcurrency   int
	RehostRatePerSecond float64
	EnableScheduler     bool

	// Logging
	LogFile  string
	LogLevel string

	// Server
	Port        string
	Environment string
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a Config from the environment without validating it.
func FromEnv() *Config {
	return &Config{
		CloudinaryCloudName:       getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset:    getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		CloudinaryAPIKey:          getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:       getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryAPIBaseURL:      getEnv("CLOUDINARY_API_BASE_URL", "https://api.cloudinary.com"),
		CloudinaryDeliveryBaseURL: getEnv("CLOUDINARY_DELIVERY_BASE_URL", "https://res.cloudinary.com"),
		CloudinaryFolderPrefix:    getEnv("CLOUDINARY_FOLDER_PREFIX", ""),
		HTTPTimeout:               getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		DocumentStore: strings.ToLower(getEnv("DOCUMENT_STORE", StoreSQLite)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "properties.db"),

		SupabaseURL:             getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey:  getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
		SupabasePropertiesTable: getEnv("SUPABASE_PROPERTIES_TABLE", "properties"),
		SupabaseSnapshotBucket:  getEnv("SUPABASE_SNAPSHOT_BUCKET", ""),

		SourcesFile:         getEnv("SOURCES_FILE", ""),
		EnableDemoSource:    getEnvBool("ENABLE_DEMO_SOURCE", true),
		RehostConcurrency:   getEnvInt("REHOST_CONCURRENCY", 4),
		RehostRatePerSecond: getEnvFloat("REHOST_RATE_PER_SECOND", 5),
		EnableScheduler:     getEnvBool("ENABLE_SCHEDULER", false),

		LogFile:  getEnv("LOG_FILE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func (c *Config) Validate() error {
	if c.CloudinaryCloudName == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME is required")
	}
	if c.CloudinaryUploadPreset == "" {
		return fmt.Errorf("CLOUDINARY_UPLOAD_PRESET is required")
	}
	if (c.CloudinaryAPIKey == "") != (c.CloudinaryAPISecret == "") {
		return fmt.Errorf("CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set together")
	}

	switch c.DocumentStore {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DOCUMENT_STORE=postgres")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DOCUMENT_STORE=sqlite")
		}
	case StoreSupabase:
		if !c.SupabaseConfigured() {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY are required when DOCUMENT_STORE=supabase")
		}
	default:
		return fmt.Errorf("DOCUMENT_STORE must be one of postgres, sqlite, supabase, got %q", c.DocumentStore)
	}

	if c.SupabaseSnapshotBucket != "" && !c.SupabaseConfigured() {
		return fmt.Errorf("SUPABASE_SNAPSHOT_BUCKET requires SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY")
	}
	if c.RehostConcurrency < 1 {
		return fmt.Errorf("REHOST_CONCURRENCY must be at least 1")
	}
	return nil
}

// ValidateServer adds the checks that only matter when serving the API.
func (c *Config) ValidateServer() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabasePublishableKey != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
