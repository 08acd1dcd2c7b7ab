// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
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

	"sams/internal/activity"
	activityhandler "sams/internal/activity/handler"
	"sams/internal/audit"
	"sams/internal/auth"
	authhandler "sams/internal/auth/handler"
	"sams/internal/auth/revocation"
	samshttp "sams/internal/http"
	"sams/internal/platform/config"
	"sams/internal/platform/httpserver"
	"sams/internal/platform/logger"
	"sams/internal/platform/metrics"
	"sams/internal/platform/middleware"
	"sams/internal/platform/postgres"
	platformredis "sams/internal/platform/redis"
	proposalhandler "sams/internal/proposal/handler"
	proposalservice "sams/internal/proposal/service"
	proposalstore "sams/internal/proposal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	m := metrics.New()

	ctx := context.Background()

	// Stores: PostgreSQL when configured, in-memory otherwise.
	var (
		propStore  proposalstore.Store = proposalstore.NewInMemory()
		actStore   activity.Store      = activity.NewInMemoryStore()
		auditStore audit.Store         = audit.NewInMemoryStore()
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		propStore = proposalstore.NewPostgres(db)
		actStore = activity.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	}
	auditPub := audit.NewPublisher(auditStore, log)

	// Token validation plus the optional Redis-backed revocation list.
	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.AccessTokenTTL)
	validator := auth.NewValidatorAdapter(tokens)

	var (
		revocationChecker middleware.RevocationChecker
		revoker           authhandler.Revoker
	)
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		store := revocation.NewRedisStore(redisClient.Client)
		revocationChecker = store
		revoker = store
	}

	proposals, err := proposalservice.New(propStore, log, m, auditPub)
	if err != nil {
		log.Error("proposal service init failed", "error", err)
		os.Exit(1)
	}
	activities, err := activity.NewService(actStore, log, m, auditPub)
	if err != nil {
		log.Error("activity service init failed", "error", err)
		os.Exit(1)
	}

	router := samshttp.NewRouter(samshttp.Deps{
		Logger:      log,
		Metrics:     m,
		Validator:   validator,
		Revocations: revocationChecker,
		Proposals:   proposalhandler.New(proposals, log),
		Activities:  activityhandler.New(activities, log),
		Auth:        authhandler.New(revoker, cfg.AccessTokenTTL, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
