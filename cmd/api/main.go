// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Epiclogue identity HTTP API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables and dotenv files.
//  3. Open the account store (Postgres + migrations, MongoDB, or memory).
//  4. Connect to Redis (reset tokens and the mail queue).
//  5. Build the credential hasher, session token service and metrics.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taibuivan/epiclogue/internal/api"
	"github.com/taibuivan/epiclogue/internal/platform/config"
	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/metrics"
	redisstore "github.com/taibuivan/epiclogue/internal/platform/redis"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
	"github.com/taibuivan/epiclogue/internal/users/account"
	"github.com/taibuivan/epiclogue/internal/users/auth"
	"github.com/taibuivan/epiclogue/internal/users/mail"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	// Misconfiguration should fail fast rather than hang on a dial.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Account Store ──────────────────────────────────────────────────
	store, err := openStorage(startupCtx, cfg, log)
	must(log, err, "open account store")
	defer store.close()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	queueOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	must(log, err, "parse redis uri for the mail queue")
	queue := asynq.NewClient(queueOpt)
	defer func() {
		if cerr := queue.Close(); cerr != nil {
			log.Error("mail_queue_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Security & Observability ───────────────────────────────────────
	hasher, err := sec.NewHasher(sec.HashParams{Iterations: cfg.KDFIterations, KeyLength: cfg.KDFKeyLength})
	must(log, err, "initialize credential hasher")

	tokens, err := newTokenService(cfg)
	must(log, err, "initialize session token service")

	var recorder *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		registry := metrics.NewRegistry()
		recorder = metrics.New(registry)
		metricsHandler = metrics.Handler(registry)
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	checks := append(store.checks, api.DependencyCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	})
	liveness, readiness := api.NewHealthHandlers(checks, log)

	cookies := auth.CookieOptions{Domain: cfg.CookieDomain, Secure: cfg.IsProduction()}

	authService := auth.NewService(store.accounts, auth.NewRedisResetTokenStore(rdb), hasher)
	authHandler := auth.NewHandler(authService, tokens, mail.NewQueueDispatcher(queue, recorder), recorder, cookies)
	accountHandler := account.NewHandler(account.NewService(authService, log), cookies)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, tokens, recorder, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metricsHandler,
		Auth:      authHandler,
		Account:   accountHandler,
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newTokenService prefers the RSA key pair when both paths are configured.
func newTokenService(cfg *config.Config) (*sec.TokenService, error) {
	if cfg.UsesRSAKeys() {
		return sec.NewRSATokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer, cfg.SessionTTL)
	}
	return sec.NewHMACTokenService([]byte(cfg.SessionSecret), constants.AuthIssuer, cfg.SessionTTL)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
