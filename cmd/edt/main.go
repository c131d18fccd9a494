// Copyright (c) 2026 Planora. All rights reserved.

// Command edt is the entry point for the Planora EDT client.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the token keystore (Redis or encrypted state file).
//  4. Wire the session store, gateway, and API clients.
//  5. Restore any persisted session.
//  6. Start the notification poller.
//  7. Start the local shell with graceful shutdown.
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

	"github.com/planora/edt-client/internal/edtapi"
	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/internal/guard"
	"github.com/planora/edt-client/internal/notify"
	"github.com/planora/edt-client/internal/platform/config"
	"github.com/planora/edt-client/internal/platform/constants"
	"github.com/planora/edt-client/internal/platform/keystore"
	"github.com/planora/edt-client/internal/session"
	"github.com/planora/edt-client/internal/shell"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Planora] client_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("listen_addr", cfg.ListenAddr),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	// Root context for startup. A short deadline catches misconfiguration
	// (e.g. an unreachable Redis) instead of hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Token Keystore ─────────────────────────────────────────────────
	var keys keystore.Store
	if cfg.UseRedisKeystore() {
		redisKeys, err := keystore.NewRedisStore(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis keystore")
		defer func() {
			log.Info("closing redis keystore")
			if cerr := redisKeys.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		keys = redisKeys
	} else {
		fileKeys, err := keystore.NewFileStore(cfg.StateDir, constants.KeystoreFileName, cfg.KeystoreSecret)
		must(log, err, "open file keystore")
		keys = fileKeys
	}

	// ── 4. Session Core & API Clients ─────────────────────────────────────
	// The store doubles as the gateway's token source, so it exists first
	// and the auth client is bound to it afterwards.
	store := session.New(keys, log)

	gw, err := gateway.New(cfg.APIBaseURL, store, log)
	must(log, err, "initialize gateway")

	store.Bind(edtapi.NewAuthClient(gw, log))

	academicClient := edtapi.NewAcademicClient(gw)
	schedulingClient := edtapi.NewSchedulingClient(gw)
	notificationsClient := edtapi.NewNotificationsClient(gw)
	reportsClient := edtapi.NewReportsClient(gw)

	// ── 5. Session Restore ────────────────────────────────────────────────
	must(log, store.Initialize(startupCtx), "restore session")
	if store.Snapshot().IsAuthenticated {
		log.Info("session_restored")
	}

	// ── 6. Notification Poller ────────────────────────────────────────────
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	center := notify.NewCenter()
	poller := notify.NewPoller(store, notificationsClient, center, cfg.PollInterval, log)
	go poller.Run(runCtx)

	// ── 7. Shell ──────────────────────────────────────────────────────────
	handler := shell.NewHandler(
		store,
		guard.New(store, guard.DefaultTable()),
		academicClient,
		schedulingClient,
		notificationsClient,
		reportsClient,
		center,
		log,
	)
	server := shell.NewServer(runCtx, cfg, log, handler)

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
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("shell startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down shell", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("client stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
