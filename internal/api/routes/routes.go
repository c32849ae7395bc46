package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"secboard/internal/api/handlers"
	"secboard/internal/api/middleware"
	"secboard/internal/config"
	"secboard/internal/refresh"
	"secboard/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, st *store.Store, orchestrator *refresh.Orchestrator) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestID())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler(st))
		health.GET("/ready", handlers.ReadinessHandler(st))
		health.GET("/live", handlers.LivenessHandler(st))
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(st, orchestrator))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.GET("/jobs", handlers.ListJobsHandler(st))
		v1.GET("/categories", handlers.CategoriesHandler(st))
		v1.GET("/stats", handlers.StatsHandler(st))
		v1.GET("/fetch-log", handlers.FetchLogHandler(st))
		v1.POST("/refresh", handlers.RefreshHandler(orchestrator))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "secboard",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
