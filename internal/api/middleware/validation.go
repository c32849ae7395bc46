package middleware

import (
	"github.com/labstack/echo/v4"

	"secboard/pkg/utils"
)

// RequestID attaches a generated request ID to every request and echoes it
// back in the response headers.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set("X-Request-ID", requestID)
			return next(c)
		}
	}
}
