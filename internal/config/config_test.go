package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider, "no api key means the keyless provider")
	assert.Equal(t, 250, cfg.DataSource.LookbackDays)
	assert.Equal(t, 60, cfg.DataSource.MinHistoryDays)
	assert.Equal(t, 120, cfg.DataSource.CacheTTLSeconds)
	assert.Equal(t, "0 */15 * * * *", cfg.Alerts.Cron)
	assert.Equal(t, 6, cfg.Alerts.CooldownHours)
	assert.Equal(t, 587, cfg.Alerts.SMTP.Port)
	assert.Equal(t, 3, cfg.Watchlist.FreeLimit)
	assert.Equal(t, 50, cfg.Watchlist.PremiumLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
data_source:
  api_key: file-key
  lookback_days: 120
watchlist:
  free_limit: 5
  premium_limit: 10
`), 0o644))

	t.Setenv("STOCK_API_KEY", "env-key")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "alerts@example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.DataSource.APIKey, "env wins over file")
	assert.Equal(t, "alphavantage", cfg.DataSource.Provider, "api key selects the keyed provider")
	assert.Equal(t, 120, cfg.DataSource.LookbackDays)
	assert.Equal(t, 5, cfg.Watchlist.FreeLimit)
	assert.Equal(t, "smtp.example.com", cfg.Alerts.SMTP.Host)
	assert.Equal(t, "alerts@example.com", cfg.Alerts.SMTP.From, "from defaults to username")
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.DataSource.Provider = "bloomberg"
	assert.ErrorContains(t, cfg.Validate(), "data_source.provider")

	cfg = base()
	cfg.DataSource.Provider = "alphavantage"
	assert.ErrorContains(t, cfg.Validate(), "api_key")

	cfg = base()
	cfg.DataSource.MinHistoryDays = 500
	assert.ErrorContains(t, cfg.Validate(), "min_history_days")

	cfg = base()
	cfg.Watchlist.FreeLimit = 99
	assert.ErrorContains(t, cfg.Validate(), "free_limit")

	cfg = base()
	cfg.Server.Port = -1
	assert.ErrorContains(t, cfg.Validate(), "server.port")
}
