package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"secboard/internal/adzuna"
	"secboard/internal/api/routes"
	"secboard/internal/config"
	"secboard/internal/logging"
	"secboard/internal/refresh"
	"secboard/internal/scheduler"
	"secboard/internal/store"
	"secboard/pkg/utils"
)

func main() {
	// Load configuration; a malformed category plan is fatal
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logging.Initialize(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := logging.GetGlobalLogger()
	logger.Info("Starting secboard aggregator")

	// Snapshot store and refresh pipeline
	st := store.New()
	fetcher := adzuna.NewClient(cfg)
	orchestrator := refresh.New(cfg, fetcher, st, logger)

	// Optional Redis stats mirror
	var mirror *utils.RedisStatsMirror
	if cfg.Redis.Enabled {
		mirror, err = utils.NewRedisStatsMirror(cfg.Redis.URL, cfg.Redis.Key, cfg.Redis.Timeout)
		if err != nil {
			logger.Fatal("Failed to create Redis stats mirror", map[string]interface{}{"error": err.Error()})
		}
		orchestrator.SetStatsMirror(mirror)
		logger.Info("Redis stats mirror enabled", map[string]interface{}{"key": cfg.Redis.Key})
	}

	// Periodic refresh
	refreshCtx, cancelRefresh := context.WithCancel(context.Background())
	sched := scheduler.New(orchestrator, cfg.Refresh.Interval, logger)
	if err := sched.Start(refreshCtx); err != nil {
		logger.Fatal("Failed to start scheduler", map[string]interface{}{"error": err.Error()})
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, cfg, st, orchestrator)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop triggering refreshes and abort any in-flight run; an aborted
		// run simply does not publish
		cancelRefresh()
		sched.Stop()

		if mirror != nil {
			if err := mirror.Close(); err != nil {
				logger.Error("Error closing Redis stats mirror", map[string]interface{}{"error": err.Error()})
			}
		}

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logging.Close()
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Info("Server stopped", map[string]interface{}{"reason": err.Error()})
	}
}
