package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage back-ends
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	Token             string
	AppID             string
	GuildID           string
	AnnounceChannelID string
	AdminUserIDs      []string

	// Storage
	StorageType string // "memory", "sqlite" or "postgres"
	DataDir     string
	SQLitePath  string
	DatabaseURL string

	// Elasticsearch event index, disabled when ESURL is empty
	ESURL         string
	ESUsername    string
	ESPassword    string
	ESIndexPrefix string

	// Prometheus listener, disabled when empty
	MetricsAddr string

	// How often the open Victory Point offer is announced again, disabled when zero
	OfferReminderInterval time.Duration

	LogLevel    string
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	dataDir := getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data"))
	cfg := &Config{
		Token:             os.Getenv("DISCORD_TOKEN"),
		AppID:             os.Getenv("APP_ID"),
		GuildID:           os.Getenv("GUILD_ID"),
		AnnounceChannelID: os.Getenv("ANNOUNCE_CHANNEL_ID"),
		AdminUserIDs:      splitList(os.Getenv("ADMIN_USER_IDS")),
		StorageType:       strings.ToLower(getEnvWithDefault("STORAGE_TYPE", StorageSQLite)),
		DataDir:           dataDir,
		SQLitePath:        getEnvWithDefault("SQLITE_PATH", filepath.Join(dataDir, "league.db")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ESURL:             os.Getenv("ES_URL"),
		ESUsername:        os.Getenv("ES_USERNAME"),
		ESPassword:        os.Getenv("ES_PASSWORD"),
		ESIndexPrefix:     getEnvWithDefault("ES_INDEX_PREFIX", "tucoleague"),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:       getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if raw := os.Getenv("OFFER_REMINDER_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid OFFER_REMINDER_INTERVAL %q: %w", raw, err)
		}
		cfg.OfferReminderInterval = interval
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// validate checks the storage settings every entrypoint needs
func (c *Config) validate() error {
	switch c.StorageType {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_TYPE is postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType)
	}
	if c.OfferReminderInterval < 0 {
		return fmt.Errorf("OFFER_REMINDER_INTERVAL must not be negative")
	}
	return nil
}

// ValidateBot checks the settings required to connect the Discord bot
func (c *Config) ValidateBot() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}
	if c.GuildID == "" {
		return fmt.Errorf("GUILD_ID is required")
	}
	return nil
}

// IsAdmin reports whether userID may run privileged league operations
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
