package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"secboard/internal/store"
	"secboard/pkg/models"
)

// StatsHandler serves the aggregate counters of the published snapshot.
func StatsHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap := st.Snapshot()

		return c.JSON(http.StatusOK, models.StatsResponse{
			Stats:        snap.Stats,
			LastUpdated:  snap.LastUpdated,
			TotalFetched: snap.TotalFetched,
			Uptime:       st.Uptime(),
		})
	}
}

// FetchLogHandler serves the most recent fetch log entries.
func FetchLogHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 0
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return errorResponse(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			}
			limit = n
		}

		return c.JSON(http.StatusOK, models.FetchLogResponse{
			Entries: st.FetchLog(limit),
		})
	}
}
