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
	"github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/realspark/console-gateway/docs"
	"github.com/realspark/console-gateway/internal/api"
	"github.com/realspark/console-gateway/internal/api/metrics"
	"github.com/realspark/console-gateway/internal/core/ports"
	"github.com/realspark/console-gateway/internal/core/service"
	"github.com/realspark/console-gateway/internal/infrastructure/config"
	"github.com/realspark/console-gateway/internal/infrastructure/credstore"
	mongoinfra "github.com/realspark/console-gateway/internal/infrastructure/db/mongo"
	redisinfra "github.com/realspark/console-gateway/internal/infrastructure/db/redis"
	"github.com/realspark/console-gateway/internal/infrastructure/queue"
	"github.com/realspark/console-gateway/internal/infrastructure/upstream"
	"github.com/realspark/console-gateway/pkg/logger"
)

// @title        RealSpark Console Gateway
// @version      1.0
// @description  Session gateway for the RealSpark admin console.
// @BasePath     /
func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet.
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	// --- Credential store: Redis when configured, no-op otherwise ---
	var store ports.CredentialStore = credstore.NewNoopStore()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisinfra.Connect(ctx, redisinfra.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, sessions will not survive restarts")
			rdb = nil
		} else {
			sealKey, err := cfg.SealKey()
			if err != nil {
				log.Fatal().Err(err).Msg("invalid session sealing key")
			}
			store, err = credstore.NewRedisStore(rdb, cfg.SessionTTL, sealKey, log)
			if err != nil {
				log.Fatal().Err(err).Msg("credential store init failed")
			}
		}
	} else {
		log.Info().Msg("no REDIS_ADDR configured, using in-memory session only")
	}

	// --- Activity trail: Mongo when configured ---
	var activity ports.ActivityRepository
	var mongoDB *mongodriver.Database
	if cfg.Mongo.URI != "" {
		client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Warn().Err(err).Msg("mongo unavailable, activity trail disabled")
		} else {
			mongoDB = db
			activity = mongoinfra.NewActivityRepository(db)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(shutdownCtx)
			}()
		}
	}

	// --- Notification pipeline ---
	var sink ports.NoticeSink
	if activity != nil {
		dispatcher := queue.NewDispatcher(cfg.NoticeWorkers, activity, log)
		dispatcher.Start(ctx)
		sink = dispatcher
	}
	relay := service.NewRelay(log, sink)

	// --- Session core; Initialize MUST complete before any route is served ---
	container := service.NewSessionContainer(store, relay, log)
	container.Initialize(ctx)
	if container.Snapshot().IsAuthenticated() {
		metrics.SessionRehydrationsTotal.WithLabelValues("restored").Inc()
	} else {
		metrics.SessionRehydrationsTotal.WithLabelValues("empty").Inc()
	}

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, log)
	login := service.NewLoginService(client, container, cfg.SessionTTL, log)

	e := api.NewRouter(api.Dependencies{
		Session:  container,
		Login:    login,
		Notifier: relay,
		Feature:  client,
		Activity: activity,
		Mongo:    mongoDB,
		Redis:    rdb,
		LoginRPM: cfg.LoginRPM,
		Log:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("upstream", cfg.UpstreamBaseURL).Msg("console gateway started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
