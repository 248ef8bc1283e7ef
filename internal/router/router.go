package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/venuecore/booking-engine/internal/handler"
	"github.com/venuecore/booking-engine/internal/middleware"
)

// RegisterRoutes registers the routes that do not require a tenant
// scope: the liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db *sqlx.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterBooking registers the booking, availability and blackout
// endpoints under /v1.  Every route requires a resolved tenant in the
// X-Tenant-ID header; the rate limiter produced by NewTokenBucket is
// applied to the whole group (it is a pass-through when disabled).
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, a *handler.AvailabilityHandler, bl *handler.BlackoutHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if limiter != nil {
		g.Use(limiter)
	}
	g.Use(middleware.RequireTenant())

	// Booking lifecycle.  Creation reserves a temp_hold; transitions move
	// the booking through the state machine; rejected transitions come
	// back as 422 results rather than errors.
	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/transitions", b.Transition)

	// Advisory availability pre-flight for a venue.
	g.GET("/venues/:id/availability", a.Check)

	// Blackout windows making a venue unbookable.
	g.POST("/venues/:id/blackouts", bl.Create)
	g.GET("/venues/:id/blackouts", bl.List)
	g.DELETE("/blackouts/:id", bl.Delete)
}
