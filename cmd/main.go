// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bigdanydan/dj-calendar-pro/internal/config"
	"github.com/Bigdanydan/dj-calendar-pro/internal/database"
	"github.com/Bigdanydan/dj-calendar-pro/internal/handler"
	"github.com/Bigdanydan/dj-calendar-pro/internal/logger"
	"github.com/Bigdanydan/dj-calendar-pro/internal/repository"
	"github.com/Bigdanydan/dj-calendar-pro/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// ── 1. Configuration and logging ─────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	format := cfg.Logging.Format
	if cfg.IsProduction() {
		format = "json"
	}
	log := logger.New(cfg.Logging.Level, format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 2. Storage ───────────────────────────────────────────────────────
	var store service.EventStore
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, events are lost on restart")
		store = repository.NewMemoryEventRepository()
	default:
		pool, err := database.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		log.Info("connected to PostgreSQL", "host", cfg.Database.Host, "database", cfg.Database.Name)
		store = repository.NewEventRepository(pool)
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	eventSvc := service.NewEventService(store, log)
	eventHandler := handler.NewEventHandler(eventSvc, log)
	router := handler.NewRouter(eventHandler, log, cfg.Server.StaticDir)

	// ── 4. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return
	}
	log.Info("server stopped")
}
