package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pipi/internal/cache"
	"pipi/internal/chat"
	"pipi/internal/config"
	"pipi/internal/database"
	"pipi/internal/handlers"
	"pipi/internal/jobs"
	"pipi/internal/log"
	"pipi/internal/media"
	"pipi/internal/realtime"
	"pipi/internal/repository"
	"pipi/internal/server"
	"pipi/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook and gallery server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect postgres")
		return err
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect redis")
		return err
	}

	store, err := media.NewStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Media.Driver).Msg("failed to init media store")
		return err
	}

	lineClient, err := chat.NewLineClient(cfg.LINE)
	if err != nil {
		logger.Error().Err(err).Msg("failed to init LINE client")
		return err
	}

	hub := realtime.NewHub()
	var notifier realtime.Notifier = hub
	var dedupe service.Deduper
	if redisClient != nil {
		bridge := realtime.NewRedisBridge(redisClient, cfg.Redis.Channel, hub, logger)
		notifier = bridge
		dedupe = service.NewRedisDeduper(redisClient, cfg.LINE.DedupeTTL)
		go func() {
			if err := bridge.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("redis bridge stopped")
			}
		}()
	}

	images := repository.NewImageRepository(dbPool)
	intake := service.NewIntakeService(images, store, notifier, cfg.Intake.TempDir, logger)
	dispatcher := service.NewDispatcher(lineClient, intake, dedupe, cfg.PublicBaseURL, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Images:     images,
		Intake:     intake,
		Dispatcher: dispatcher,
		Media:      store,
		Hub:        hub,
		DB:         dbPool,
		Cache:      redisClient,
	})
	httpServer, err := server.NewHTTPServer(cfg, logger, handlerSet)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build http server")
		return err
	}

	httpServer.RegisterOnShutdown(hub.Close)

	scheduler := jobs.NewScheduler(cfg.Intake.TempDir, service.TempPrefix, cfg.Intake.TempMaxAge, cfg.Intake.SweepSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Start()
	}()

	return waitForShutdown(logger, serveErr, httpServer, scheduler, cancel, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, serveErr <-chan error, srv *server.HTTPServer, scheduler *jobs.Scheduler, stopBackground context.CancelFunc, db *pgxpool.Pool, redisClient *redis.Client) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-serveErr:
		if runErr != nil {
			logger.Error().Err(runErr).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	<-scheduler.Stop().Done()
	stopBackground()

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
	return runErr
}
