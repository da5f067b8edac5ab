package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/gymhub/internal/metrics"
)

// RequestLogger attaches a request-scoped logger to the request context,
// logs one line per request and records the HTTP metrics.  Errors are
// rendered here through the echo error handler so the logged status is
// the one the client sees.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			logger := base.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			elapsed := time.Since(start)
			metrics.RecordRequest(req.Method, route, strconv.Itoa(status), elapsed)

			ev := logger.Info()
			if status >= 500 {
				ev = logger.Error().Err(err)
			}
			ev.Str("route", route).
				Int("status", status).
				Dur("latency", elapsed).
				Str("ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}
