package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	DataSource struct {
		Provider        string `yaml:"provider"` // "alphavantage", "yahoo" or "mock"
		APIKey          string `yaml:"api_key"`
		BaseURL         string `yaml:"base_url"`
		LookbackDays    int    `yaml:"lookback_days"`
		MinHistoryDays  int    `yaml:"min_history_days"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"data_source"`
	Alerts struct {
		Cron          string `yaml:"cron"`
		CooldownHours int    `yaml:"cooldown_hours"`
		RunOnStart    bool   `yaml:"run_on_start"`
		SMTP          struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			From     string `yaml:"from"`
		} `yaml:"smtp"`
		Telegram struct {
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"alerts"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Watchlist struct {
		File         string `yaml:"file"`
		FreeLimit    int    `yaml:"free_limit"`
		PremiumLimit int    `yaml:"premium_limit"`
	} `yaml:"watchlist"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; env and defaults carry it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STOCK_API_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("STOCK_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("STOCK_API_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Alerts.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Alerts.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Alerts.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Alerts.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Alerts.SMTP.From = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Alerts.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Alerts.Telegram.ChatID = v
	}
	if v := os.Getenv("ALERTS_CRON"); v != "" {
		cfg.Alerts.Cron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		cfg.Alerts.RunOnStart = v == "1" || v == "true"
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("WATCHLIST_FILE"); v != "" {
		cfg.Watchlist.File = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.DataSource.Provider == "" {
		if cfg.DataSource.APIKey != "" {
			cfg.DataSource.Provider = "alphavantage"
		} else {
			cfg.DataSource.Provider = "yahoo"
		}
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 250
	}
	if cfg.DataSource.MinHistoryDays == 0 {
		cfg.DataSource.MinHistoryDays = 60
	}
	if cfg.DataSource.CacheTTLSeconds == 0 {
		cfg.DataSource.CacheTTLSeconds = 120
	}
	if cfg.Alerts.Cron == "" {
		// Every 15 minutes.
		cfg.Alerts.Cron = "0 */15 * * * *"
	}
	if cfg.Alerts.CooldownHours == 0 {
		cfg.Alerts.CooldownHours = 6
	}
	if cfg.Alerts.SMTP.Port == 0 {
		cfg.Alerts.SMTP.Port = 587
	}
	if cfg.Alerts.SMTP.From == "" {
		cfg.Alerts.SMTP.From = cfg.Alerts.SMTP.Username
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/friendlyticker.db"
	}
	if cfg.Watchlist.File == "" {
		cfg.Watchlist.File = "data/watchlists.json"
	}
	if cfg.Watchlist.FreeLimit == 0 {
		cfg.Watchlist.FreeLimit = 3
	}
	if cfg.Watchlist.PremiumLimit == 0 {
		cfg.Watchlist.PremiumLimit = 50
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535")
	}
	switch c.DataSource.Provider {
	case "alphavantage", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider must be alphavantage, yahoo or mock, got %q", c.DataSource.Provider)
	}
	if c.DataSource.Provider == "alphavantage" && c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required for alphavantage")
	}
	if c.DataSource.MinHistoryDays > c.DataSource.LookbackDays {
		return fmt.Errorf("data_source.min_history_days must not exceed lookback_days")
	}
	if c.Alerts.CooldownHours < 0 {
		return fmt.Errorf("alerts.cooldown_hours must not be negative")
	}
	if c.Watchlist.FreeLimit > c.Watchlist.PremiumLimit {
		return fmt.Errorf("watchlist.free_limit must not exceed premium_limit")
	}
	return nil
}
