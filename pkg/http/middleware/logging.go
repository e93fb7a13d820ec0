package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "StockPull/pkg/logger"
)

// RequestLogging logs one line per request.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency_ms", time.Since(start)),
				applogger.String("request_id", RequestIDFrom(c)),
			}
			if err != nil {
				l.Warn("request failed", append(fields, applogger.Error(err))...)
				return nil
			}
			l.Info("request", fields...)
			return nil
		}
	}
}
