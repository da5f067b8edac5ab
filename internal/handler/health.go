package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Health reports that the process is up.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Ready answers 200 when the database responds to a ping and 503
// otherwise.  A nil db is never ready.
func Ready(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "database not configured"})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("readiness: database ping failed")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "database unavailable"})
		}
		return c.String(http.StatusOK, "ready")
	}
}
