package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/simsparts/sims-api/internal/api"
	"github.com/simsparts/sims-api/internal/core/service"
	mongodb "github.com/simsparts/sims-api/internal/infrastructure/db/mongo"
	"github.com/simsparts/sims-api/internal/infrastructure/db/postgres"
	redisdb "github.com/simsparts/sims-api/internal/infrastructure/db/redis"
	"github.com/simsparts/sims-api/internal/pkg/config"
	"github.com/simsparts/sims-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Dependencies ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}

	pg, err := postgres.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer func() { _ = pg.Close() }()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() { _ = rdb.Close() }()
	}

	// --- Background retention ---
	retention := service.NewRetentionJob(postgres.NewSecurityStore(pg), cfg.Security.Retention(), time.Hour, log)
	retention.Start(ctx)

	// --- HTTP server ---
	e, err := api.NewRouter(cfg, db, pg, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting sims-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	log.Info().Msg("stopped")
}
