package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	AI      AIConfig
	Sheets  SheetsConfig
	Backup  BackupConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port             string
	CORSAllowOrigins []string
}

// MongoDBConfig holds settings for the MongoDB blob store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for the summary LLM provider. An empty key disables
// the feature rather than failing startup.
type AIConfig struct {
	AnthropicKey string
}

// SheetsConfig contains configuration for the optional Google Sheets report
// sync. Both fields empty disables the feature.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// BackupConfig holds the automatic backup job settings. Location governs how
// the cron expressions are interpreted.
type BackupConfig struct {
	CronSchedule string
	Dir          string
	Location     *time.Location
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	location := time.Local
	if raw := os.Getenv("TIMEZONE"); raw != "" {
		parsed, err := time.LoadLocation(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", raw, err)
		}
		location = parsed
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:             getenvWithDefault("APP_PORT", "8080"),
			CORSAllowOrigins: splitList(getenvWithDefault("CORS_ALLOW_ORIGINS", "*")),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "milltrack"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Backup: BackupConfig{
			CronSchedule: getenvWithDefault("BACKUP_CRON_SCHEDULE", "0 2 * * *"),
			Dir:          getenvWithDefault("BACKUP_DIR", "backups"),
			Location:     location,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and that
// optional features are configured completely or not at all.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Backup.CronSchedule == "" {
		return errors.New("BACKUP_CRON_SCHEDULE must be provided")
	}
	if c.Backup.Dir == "" {
		return errors.New("BACKUP_DIR must be provided")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets report sync is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
