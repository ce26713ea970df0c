package middleware

import (
	"time"

	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

func RequestLogger(logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the response so the status below is final
				c.Error(err)
			}
			duration := time.Since(started)
			ctx := c.Request().Context()
			args := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"route_pattern", c.Path(),
				"status", c.Response().Status,
				"duration", duration.String(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if user, ok := CurrentUser(c); ok {
				args = append(args, "user_id", user.ID)
			}
			if c.Response().Status >= 500 {
				logger.Warn(ctx, "http request", args...)
			} else {
				logger.Info(ctx, "http request", args...)
			}
			return nil
		}
	}
}
