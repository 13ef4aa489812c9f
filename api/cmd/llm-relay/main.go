package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"llm-relay/api/internal/cache"
	"llm-relay/api/internal/config"
	"llm-relay/api/internal/fetch"
	"llm-relay/api/internal/handle"
	"llm-relay/api/internal/httpserver"
	"llm-relay/api/internal/llm/gemini"
	"llm-relay/api/internal/logger"
	"llm-relay/api/internal/metrics"
	"llm-relay/api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	lg := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	opts := cache.Options{
		Size:         cfg.CacheSize,
		TTL:          cfg.CacheTTL,
		StoreTimeout: cfg.StoreTimeout,
		Metrics:      m,
		Logger:       lg,
	}
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			lg.Fatal().Err(err).Msg("database")
		}
		defer db.Close()
		repo := store.NewDocumentRepo(db, cfg.DocumentMaxAge)
		if err := repo.EnsureSchema(ctx); err != nil {
			lg.Fatal().Err(err).Msg("database schema")
		}
		opts.Store = repo
		lg.Info().Msg("document store enabled")
	}

	urlCache := cache.New(fetch.New(cfg.FetchTimeout, cfg.FetchMaxBytes), opts)
	engine := gemini.New(cfg.APIKey, cfg.GeminiModel)
	h := handle.New(urlCache, engine, handle.Options{
		Metrics:      m,
		Logger:       lg,
		ModelTimeout: cfg.ModelTimeout,
	})

	lg.Info().
		Str("model", engine.GetModel()).
		Int("cache_size", cfg.CacheSize).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configured")

	srv := httpserver.New(cfg.Addr(), httpserver.NewRouter(h, m, lg), cfg.ShutdownTimeout, lg)
	if err := srv.Run(ctx); err != nil {
		lg.Error().Err(err).Msg("server")
		os.Exit(1)
	}
}
