package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_DB_NAME", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")
	t.Setenv("BACKUP_CRON_SCHEDULE", "")
	t.Setenv("BACKUP_DIR", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("TIMEZONE", "")

	cfg, err := Load("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "milltrack", cfg.MongoDB.DBName)
	assert.Equal(t, "0 2 * * *", cfg.Backup.CronSchedule)
	assert.Equal(t, time.Local, cfg.Backup.Location)
	assert.False(t, cfg.SheetsEnabled())
}

func TestLoad_Timezone(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load("nonexistent.env")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.Backup.Location)
}

func TestLoad_TimezoneInvalid(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load("nonexistent.env")
	assert.Error(t, err)
}

func TestLoad_CORSList(t *testing.T) {
	t.Setenv("CORS_ALLOW_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load("nonexistent.env")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.Server.CORSAllowOrigins)
}

func TestValidate_SheetsMustBeConfiguredTogether(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")

	_, err := Load("nonexistent.env")
	assert.Error(t, err)
}

func TestValidate_SheetsEnabled(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-id")

	cfg, err := Load("nonexistent.env")
	require.NoError(t, err)
	assert.True(t, cfg.SheetsEnabled())
}
