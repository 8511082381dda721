package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatwire/internal/app/server"
	"chatwire/internal/config"
	"chatwire/internal/core/contracts"
	"chatwire/internal/core/services"
	"chatwire/internal/platform/logger"
	"chatwire/internal/platform/telemetry"
	"chatwire/internal/plugins/memory"
	"chatwire/internal/plugins/postgres"
	redisPlugin "chatwire/internal/plugins/redis"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, *cfg.Postgres); err != nil {
		log.Error("postgres connection failed", "DSN", cfg.Postgres.DSN, "err", err)
		return
	}
	defer pdb.Close()
	log.Info("postgres connected")

	var broadcaster contracts.Broadcaster
	var revocations contracts.ExpiringStore
	switch cfg.Broker.Driver {
	case "memory":
		log.Warn("broker driver is memory, presence and messages will not cross process boundaries")
		broadcaster = memory.NewBroadcaster()
		revocations = memory.NewExpiringStore()
	default:
		rdb, err := redisPlugin.NewRedisClient(ctx, *cfg.Redis)
		if err != nil {
			log.Error("redis connection failed", "url", cfg.Redis.URL, "err", err)
			return
		}
		defer rdb.Close()
		log.Info("redis connected")
		broadcaster = redisPlugin.NewBroadcaster(log, rdb)
		revocations = redisPlugin.NewExpiringStore(rdb)
	}

	// Adapters
	userRepo := postgres.NewUserRepository(pdb)
	convRepo := postgres.NewConversationRepo(pdb)
	memberRepo := postgres.NewMemberRepo(pdb)
	msgRepo := postgres.NewMessageRepo(pdb)
	txManager := postgres.NewTxManager(pdb)

	// Core Services
	userSvc := services.NewUserService(log, userRepo)
	tokenSvc := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	guard := services.NewRevocationGuard(log, revocations, cfg.Auth.RevocationFailClosed)
	fanout := services.NewFanoutService(log, broadcaster)
	convSvc := services.NewConversationService(log, convRepo, memberRepo, txManager)
	msgSvc := services.NewMessageService(log, msgRepo, memberRepo, fanout)
	tracker := services.NewPresenceTracker(log, userRepo, broadcaster, cfg.Presence.Timeout, cfg.Presence.SweepInterval)

	go tracker.Run(ctx)

	// Server
	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr,
		userSvc, tokenSvc, guard, convSvc, msgSvc, fanout, tracker)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "err", err)
		}
	}
	log.Info("application stopped")
}
