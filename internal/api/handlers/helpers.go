package handlers

import (
	"time"

	"github.com/labstack/echo/v4"

	"secboard/pkg/models"
	"secboard/pkg/utils"
)

// requestID returns the request ID set by the middleware, generating one
// when the middleware did not run (tests hit handlers directly).
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}

func errorResponse(c echo.Context, code int, errKey, message string) error {
	return c.JSON(code, models.ErrorResponse{
		Error:     errKey,
		Message:   message,
		RequestID: requestID(c),
		Timestamp: time.Now(),
	})
}
