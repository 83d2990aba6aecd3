package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"FriendlyTicker/internal/alerts"
	"FriendlyTicker/internal/analysis"
	"FriendlyTicker/internal/collector"
	"FriendlyTicker/internal/config"
	"FriendlyTicker/internal/scheduler"
	"FriendlyTicker/internal/server"
	"FriendlyTicker/internal/watchlist"
	"FriendlyTicker/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logger.New(logger.Config{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Msg("FriendlyTicker starting")

	// Data source
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "alphavantage":
		fetcher = collector.NewAlphaVantageFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	cache := collector.NewCache(time.Duration(cfg.DataSource.CacheTTLSeconds) * time.Second)
	col := collector.New(fetcher, cache, cfg.DataSource.LookbackDays, cfg.DataSource.MinHistoryDays, log)
	analyzer := analysis.NewService(col, log)

	// Watchlists
	wl, err := watchlist.NewStore(cfg.Watchlist.File, cfg.Watchlist.FreeLimit, cfg.Watchlist.PremiumLimit, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("init watchlist store")
	}

	// Alerts
	store, err := alerts.NewStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("init alert store")
	}
	defer store.Close()

	alertSvc := alerts.NewService(store, analyzer,
		time.Duration(cfg.Alerts.CooldownHours)*time.Hour, log)

	var notifiers []alerts.Notifier
	if cfg.Alerts.SMTP.Host != "" {
		notifiers = append(notifiers, alerts.NewSMTPNotifier(
			cfg.Alerts.SMTP.Host, cfg.Alerts.SMTP.Port,
			cfg.Alerts.SMTP.Username, cfg.Alerts.SMTP.Password, cfg.Alerts.SMTP.From))
	}
	if cfg.Alerts.Telegram.BotToken != "" && cfg.Alerts.Telegram.ChatID != "" {
		notifiers = append(notifiers, alerts.NewTelegramNotifier(
			cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID, cfg.Proxy, log))
	}
	if len(notifiers) == 0 {
		log.Warn().Msg("no delivery channel configured, alerts will only be logged")
		notifiers = append(notifiers, alerts.NewNoopNotifier(log))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, alertSvc, notifiers, log)
	if err := sched.Register(cfg.Alerts.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Alerts.RunOnStart {
		log.Info().Msg("RUN_ON_START enabled, executing alert sweep now")
		go func() {
			sent, _ := sched.RunNow(ctx)
			log.Info().Int("sent", sent).Msg("startup alert sweep finished")
		}()
	}

	srv := server.New(server.Config{
		Port:       cfg.Server.Port,
		Analyzer:   analyzer,
		Watchlists: wl,
		AlertStore: store,
		Scheduler:  sched,
		Log:        log,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("FriendlyTicker stopped")
}
