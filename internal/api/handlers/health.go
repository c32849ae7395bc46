package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"secboard/internal/refresh"
	"secboard/internal/store"
	"secboard/pkg/models"
)

const version = "1.0.0"

// HealthHandler handles health check requests
func HealthHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    st.Uptime(),
			Checks: map[string]string{
				"api": "ok",
			},
		})
	}
}

// ReadinessHandler reports ready once a first snapshot has been published.
// Query endpoints work before that, but serve an empty board.
func ReadinessHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "ready"
		code := http.StatusOK
		snapshotCheck := "ok"

		if !st.Published() {
			status = "waiting_for_first_refresh"
			code = http.StatusServiceUnavailable
			snapshotCheck = "empty"
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    st.Uptime(),
			Checks: map[string]string{
				"api":      "ok",
				"snapshot": snapshotCheck,
			},
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "alive",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    st.Uptime(),
		})
	}
}

// StatusHandler provides detailed service status, including the refresh
// pipeline state.
func StatusHandler(st *store.Store, orchestrator *refresh.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap := st.Snapshot()

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":        "operational",
			"version":       version,
			"uptime":        st.Uptime().String(),
			"refresh_state": orchestrator.State().String(),
			"jobs":          snap.Stats.Total,
			"last_updated":  snap.LastUpdated,
		})
	}
}
