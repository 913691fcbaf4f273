package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/morpheus-mall/mall-backend/database"
	"github.com/morpheus-mall/mall-backend/internal/cache"
	"github.com/morpheus-mall/mall-backend/internal/event"
	"github.com/morpheus-mall/mall-backend/internal/logging"
	"github.com/morpheus-mall/mall-backend/internal/notification"
	"github.com/morpheus-mall/mall-backend/internal/store"
	"github.com/morpheus-mall/mall-backend/internal/tracing"
	"github.com/morpheus-mall/mall-backend/routes"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracerProvider(logging.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, cfg.DBSchema); err != nil {
		return err
	}

	redisClient, queryCache := connectCache(ctx)

	publisher := notification.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)

	// other replicas publish too; their changes reach this cache through the topic
	var consumer *notification.Consumer
	if len(cfg.KafkaBrokers) > 0 && queryCache != nil {
		consumer = notification.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID,
			notification.CacheInvalidator(queryCache, event.OpFetchEvents, store.OpListStores, store.OpListMalls))
		consumer.Start(ctx)
	}

	if !strings.EqualFold(cfg.LogLevel, zerolog.LevelDebugValue) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.Setup(router, routes.Deps{
		DB:        db,
		Config:    cfg,
		Redis:     redisClient,
		Cache:     queryCache,
		Publisher: publisher,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case err := <-serveErr:
		stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			log.Error().Err(err).Msg("consumer close failed")
		}
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("publisher close failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}

	log.Info().Msg("Server stopped")
	return nil
}

// connectCache returns nil values when Redis is not configured or not
// reachable; the API then runs uncached with in-memory rate limits.
func connectCache(ctx context.Context) (*redis.Client, *cache.Cache) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("Query cache disabled (REDIS_ADDR not set)")
		return nil, nil
	}

	client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, running without query cache")
		_ = client.Close()
		return nil, nil
	}

	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("Query cache connected")
	return client, cache.New(client, cfg.CacheTTL)
}
