package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 9090

[database]
host = "db"
port = 5433
dbname = "barbers"

[engine]
default_day_start = "09:00"
default_day_end = "19:00"
slot_granularity_minutes = 15

[booking]
advance_booking_days = 30
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "09:00", cfg.Engine.DefaultDayStart)
	assert.Equal(t, 15, cfg.Engine.SlotGranularityMinutes)
	assert.Equal(t, 30, cfg.Booking.AdvanceBookingDays)

	// не указанные в файле значения берутся из дефолтов
	assert.Equal(t, 60, cfg.Booking.MinBookingNoticeMinutes)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "08:00", cfg.Engine.DefaultDayStart)
	assert.Equal(t, "18:00", cfg.Engine.DefaultDayEnd)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Contains(t, cfg.Database.DSN(), "password=secret")
}

func TestLoad_InvalidEnginePeriod(t *testing.T) {
	path := writeConfig(t, `
[engine]
default_day_start = "18:00"
default_day_end = "08:00"
slot_granularity_minutes = 30
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_InvalidGranularity(t *testing.T) {
	path := writeConfig(t, `
[engine]
slot_granularity_minutes = 0
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_BadPortEnv(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	_, err := Load(writeConfig(t, sampleConfig))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
