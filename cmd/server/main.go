package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/icar1an/serenity/internal/config"
	"github.com/icar1an/serenity/internal/db"
	"github.com/icar1an/serenity/internal/fallback"
	"github.com/icar1an/serenity/internal/handler"
	"github.com/icar1an/serenity/internal/middleware"
	"github.com/icar1an/serenity/internal/override"
	"github.com/icar1an/serenity/internal/repository"
	"github.com/icar1an/serenity/internal/resolver"
	"github.com/icar1an/serenity/internal/router"
	"github.com/icar1an/serenity/internal/service"
	"github.com/icar1an/serenity/internal/storage"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "serenity-api")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	// Override persistence: Redis when available, process-local otherwise.
	var kv storage.KV
	var rdb *redis.Client
	if redisKV, err := storage.NewRedisKV(cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, overrides are process-local")
		kv = storage.NewMemoryKV()
	} else {
		kv = redisKV
		rdb = redisKV.Client()
		defer redisKV.Close()
	}

	// Fallback dataset: embedded snapshot unless a newer file is shipped.
	var dataset *fallback.Dataset
	if cfg.FallbackDataset != "" {
		dataset, err = fallback.LoadFile(cfg.FallbackDataset)
	} else {
		dataset, err = fallback.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("fallback dataset load failed")
	}

	channels := repository.NewChannelRepo(pool)
	votes := repository.NewVoteRepo(pool)
	predictions := repository.NewPredictionRepo(pool)
	reputation := repository.NewReputationRepo(pool)

	var res *resolver.Resolver
	overrides := override.New(kv, func(key string) { res.Invalidate(key) })
	res = resolver.New(
		overrides,
		repository.NewConsensusSource(channels, predictions),
		dataset,
		log,
	)

	voteSvc := service.NewVoteService(channels, votes, predictions, reputation, res, log)
	queueSvc := service.NewQueueService(channels, reputation)
	worker := service.NewInvalidateWorker(pool, res, log)

	handler.InitMetrics(pool)

	app := fiber.New(fiber.Config{
		AppName:      "Serenity API",
		ServerHeader: "Serenity",
	})

	router.Setup(app, &router.Handlers{
		Labeler:  handler.NewLabelerHandler(queueSvc, voteSvc),
		Override: handler.NewOverrideHandler(overrides),
		Channel:  handler.NewChannelHandler(channels, res),
		Health:   handler.NewHealthHandler(pool, rdb),
	}, cfg.CORSOrigins, cfg.LabelerToken)

	if cfg.LabelerToken == "" {
		log.Warn().Msg("MANUAL_LABELER_TOKEN is unset, labeler endpoints will reject all requests")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		res.StartSweeper(gctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("serenity backend starting")
		return app.Listen(":" + cfg.Port)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
