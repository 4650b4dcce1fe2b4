// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/versocms/verso/internal/auth"
	"github.com/versocms/verso/internal/cache"
	"github.com/versocms/verso/internal/config"
	"github.com/versocms/verso/internal/handler/api"
	"github.com/versocms/verso/internal/middleware"
	"github.com/versocms/verso/internal/plugin"
	"github.com/versocms/verso/internal/scheduler"
	"github.com/versocms/verso/internal/service"
	"github.com/versocms/verso/internal/store"
	"github.com/versocms/verso/internal/store/es"
	"github.com/versocms/verso/internal/store/sqldb"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogger(cfg)
	slog.Info("starting verso",
		"version", appVersion,
		"commit", appGitCommit,
		"env", cfg.Env,
		"backend", cfg.Backend,
	)

	backend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	defer backend.Close()

	secret, err := cfg.SecretBytes()
	if err != nil {
		return err
	}
	tokens := auth.NewTokenService(secret)

	contentCache, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return err
	}
	defer contentCache.Close()

	logger := slog.Default()
	plugins := plugin.NewRegistry(logger)

	users := service.NewUserService(backend.Users(), tokens, plugins, logger)
	pages := service.NewPageService(backend.Pages(), contentCache, logger)
	posts := service.NewPostService(backend.Posts(), contentCache, logger)

	sched := scheduler.New(pages, posts, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	protection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	handler := api.NewHandler(users, pages, posts, protection, backend, logger)
	router := handler.Router(api.RouterConfig{
		Tokens:         tokens,
		BlogEnabled:    cfg.BlogEnabled,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr, "blog", cfg.BlogEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openBackend builds the configured store implementation. Both return
// the same interface; nothing downstream knows which engine serves it.
func openBackend(cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendDocument:
		return es.Open(es.Options{
			Addresses: cfg.ESAddresses,
			Username:  cfg.ESUsername,
			Password:  cfg.ESPassword,
		})
	default:
		opts := sqldb.DefaultOptions(cfg.DBPath)
		if cfg.UseMySQL() {
			opts.Driver = sqldb.DriverMySQL
			opts.DSN = cfg.MySQLDSN
		}
		return sqldb.Open(opts)
	}
}

func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
