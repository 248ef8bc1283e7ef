package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers and monitoring
// systems.  It only proves the process is serving requests; readiness
// of the backing stores is reported by Ready.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "booking-engine"})
}

// Ready returns a readiness handler that pings the durable store.  The
// ephemeral stores are deliberately excluded: the engine degrades
// without them, so their absence must not take the service out of
// rotation.
func Ready(db *sqlx.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	}
}
