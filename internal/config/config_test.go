package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("ADMIN_USER_IDS", " 111, 222 ,,")
	t.Setenv("OFFER_REMINDER_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, filepath.Join(dir, "data", "league.db"), cfg.SQLitePath)
	assert.Equal(t, []string{"111", "222"}, cfg.AdminUserIDs)
	assert.DirExists(t, cfg.DataDir)
	assert.True(t, cfg.IsAdmin("222"))
	assert.False(t, cfg.IsAdmin("333"))
	assert.Zero(t, cfg.OfferReminderInterval)
}

func TestLoadOfferReminderInterval(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("STORAGE_TYPE", "memory")

	t.Setenv("OFFER_REMINDER_INTERVAL", "6h")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, cfg.OfferReminderInterval)

	t.Setenv("OFFER_REMINDER_INTERVAL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "OFFER_REMINDER_INTERVAL")

	t.Setenv("OFFER_REMINDER_INTERVAL", "-1m")
	_, err = Load()
	assert.ErrorContains(t, err, "must not be negative")
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("STORAGE_TYPE", "redis")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORAGE_TYPE")
}

func TestValidateBot(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.ValidateBot(), "DISCORD_TOKEN")

	cfg.Token = "token"
	assert.ErrorContains(t, cfg.ValidateBot(), "APP_ID")

	cfg.AppID = "app"
	assert.ErrorContains(t, cfg.ValidateBot(), "GUILD_ID")

	cfg.GuildID = "guild"
	assert.NoError(t, cfg.ValidateBot())
}
