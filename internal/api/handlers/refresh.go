package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"secboard/internal/logging"
	"secboard/internal/refresh"
	"secboard/pkg/models"
	"secboard/pkg/utils"
)

// RefreshHandler triggers a manual refresh run and waits for it to finish.
// A refresh already in progress is rejected with 409: the in-flight run will
// complete and overwrite shortly anyway.
func RefreshHandler(orchestrator *refresh.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		reqID := requestID(c)

		logger.Info("Manual refresh requested", map[string]interface{}{"request_id": reqID})

		result, err := orchestrator.TriggerRefresh(c.Request().Context())
		if err != nil {
			var custom *utils.CustomError
			if errors.As(err, &custom) && custom.Code == http.StatusConflict {
				return errorResponse(c, http.StatusConflict, "refresh_in_progress", custom.Message)
			}

			logger.Error("Manual refresh failed", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return errorResponse(c, http.StatusInternalServerError, "refresh_failed", err.Error())
		}

		return c.JSON(http.StatusOK, models.RefreshResponse{
			Success:   true,
			Fetched:   result.Fetched,
			Published: result.Published,
			Duration:  result.Duration,
			RequestID: reqID,
		})
	}
}
