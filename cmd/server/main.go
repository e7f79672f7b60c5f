package main

import (
	"context"
	"errors"
	"flashinfos/internal/cache"
	"flashinfos/internal/config"
	"flashinfos/internal/db"
	"flashinfos/internal/router"
	"flashinfos/internal/services"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))
	gin.SetMode(cfg.GinMode)

	// Initialize Database
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := db.SeedCategories(gdb); err != nil {
		slog.Warn("failed to seed categories", "error", err)
	}

	pageCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer pageCache.Close()

	// Initialize view recorder
	views := services.NewViewRecorder(gdb, cfg.ViewQueueSize)
	defer views.Close()

	if cfg.ReconcileSpec != "" {
		scheduler, err := services.NewReconciler(gdb).Schedule(cfg.ReconcileSpec)
		if err != nil {
			return err
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	engine, err := router.New(router.Deps{Config: cfg, DB: gdb, Cache: pageCache, Views: views})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "name", cfg.SiteName, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.UseRedisCache() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CachePrefix)
		if err != nil {
			return nil, err
		}
		slog.Info("using redis cache")
		return r, nil
	}
	m, err := cache.NewMemory(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return m, nil
}
