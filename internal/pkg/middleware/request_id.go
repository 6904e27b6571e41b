package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	httpclient "github.com/piresc/authgate/internal/pkg/http"
)

// RequestIDMiddleware adds a unique request ID to each request and makes it
// available to outbound backend calls through the request context.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			c.Response().Header().Set("X-Request-ID", requestID)
			c.Set("request_id", requestID)

			req := c.Request()
			c.SetRequest(req.WithContext(httpclient.WithRequestID(req.Context(), requestID)))

			return next(c)
		}
	}
}
