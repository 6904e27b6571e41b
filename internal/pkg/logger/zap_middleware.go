package logger

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
)

// ZapEchoMiddleware creates middleware for Echo framework using Zap logger
func ZapEchoMiddleware(logger *ZapLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			path := c.Request().URL.Path
			raw := c.Request().URL.RawQuery

			err := next(c)
			if err != nil {
				// let echo write the error response so the logged status is final
				c.Error(err)
			}

			latency := time.Since(start)
			statusCode := c.Response().Status

			if raw != "" {
				path = path + "?" + raw
			}

			visitorID := "anonymous"
			if vid := c.Get("visitor_id"); vid != nil {
				visitorID = fmt.Sprintf("%v", vid)
			}

			requestID := c.Response().Header().Get("X-Request-ID")

			logger.LogHTTPRequest(c.Request().Method, path, c.RealIP(), visitorID, requestID, statusCode, latency, err)

			return nil
		}
	}
}
