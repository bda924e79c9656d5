package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spimex-data/internal/cache"
	"spimex-data/internal/config"
	"spimex-data/internal/database"
	"spimex-data/internal/discovery"
	"spimex-data/internal/download"
	"spimex-data/internal/extract"
	"spimex-data/internal/metrics"
	"spimex-data/internal/scrape"
	"spimex-data/internal/server"
	"spimex-data/internal/site"
	"spimex-data/internal/store"
	"spimex-data/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/server.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Local overrides for credentials; absence is fine.
	_ = godotenv.Load()

	logger.Info("starting server",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Connect the response cache
	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	logger.Info("redis connected", "host", cfg.Redis.Host, "port", cfg.Redis.Port)

	responseCache := cache.New(redisClient, cfg.Cache.TTL, logger)

	// Assemble the scrape pipeline
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

	metrics.Register()

	// Daily cache flush keeps responses from outliving fresh scrape data.
	if cfg.Cache.ResetAt != "" {
		resetJob, err := cache.NewResetJob(responseCache, cfg.Cache.ResetAt, logger)
		if err != nil {
			logger.Error("failed to create cache reset job", "error", err)
			os.Exit(1)
		}
		if err := resetJob.Start(ctx); err != nil {
			logger.Error("failed to start cache reset job", "error", err)
			os.Exit(1)
		}
		defer resetJob.Stop(context.Background())
	}

	// Start the HTTP API
	handler := server.NewHandler(st, responseCache, coordinator, logger)
	router := server.NewRouter(handler, cfg.Metrics.Path)
	srv := server.NewServer(cfg.Server, router, logger)
	srv.Start()

	logger.Info("server running", "port", cfg.Server.Port)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Let an in-flight scrape run finish before the pool closes.
	coordinator.Wait()

	logger.Info("server stopped")
}
