package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spimex-data/internal/config"
	"spimex-data/internal/database"
	"spimex-data/internal/discovery"
	"spimex-data/internal/download"
	"spimex-data/internal/extract"
	"spimex-data/internal/scrape"
	"spimex-data/internal/site"
	"spimex-data/internal/store"
	"spimex-data/internal/version"
)

// One-shot scrape run for cron and manual use. Exits non-zero on failure so
// schedulers can alert on it.
func main() {
	configPath := flag.String("config", "configs/server.local.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	logger.Info("starting scraper",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	siteClient := site.New(
		cfg.Site.BaseURL,
		site.WithTimeout(cfg.Site.RequestTimeout),
		site.WithConnectTimeout(cfg.Site.ConnectTimeout),
		site.WithMaxConns(cfg.Site.MaxConns),
		site.WithUserAgent(cfg.Site.UserAgent),
		site.WithLogger(logger),
	)

	st := store.New(pool, logger)
	discoverer := discovery.New(discovery.Config{
		StartPath:  cfg.Site.StartPath,
		CutoffYear: cfg.Scraper.CutoffYear,
	}, siteClient, logger)
	downloader := download.New(siteClient, logger)
	extractor := extract.New(extract.Config{
		Concurrency: cfg.Scraper.ExtractConcurrency,
	}, logger)

	coordinator := scrape.New(
		scrape.Config{ScratchDir: cfg.Scraper.ScratchDir},
		st, discoverer, downloader, extractor, logger,
	)

	if err := coordinator.RunOnce(ctx); err != nil {
		if errors.Is(err, scrape.ErrMigrationRequired) {
			logger.Error("target table is missing, run cmd/migrate first")
		} else {
			logger.Error("scrape run failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("scraper finished")
}
