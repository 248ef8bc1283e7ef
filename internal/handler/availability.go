package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/venuecore/booking-engine/internal/engine"
	"github.com/venuecore/booking-engine/internal/middleware"
	"github.com/venuecore/booking-engine/internal/model"
)

// AvailabilityHandler answers advisory availability questions.  The
// report is a pre-flight convenience; the storage exclusion constraint
// remains the only authority at write time, so a positive answer here
// is never a promise that a subsequent create will succeed.
type AvailabilityHandler struct {
	Engine *engine.Engine
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(e *engine.Engine) *AvailabilityHandler {
	if e == nil {
		panic("nil engine passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Engine: e}
}

// Check handles GET /v1/venues/:id/availability?start=...&end=...
// with RFC3339 timestamps and an optional exclude=<booking id> used
// when probing a move of an existing booking.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	venue, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be RFC3339"})
	}
	var exclude *uuid.UUID
	if raw := c.QueryParam("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exclude id"})
		}
		exclude = &id
	}

	report, err := h.Engine.CheckAvailability(c.Request().Context(), tenant, venue,
		model.Interval{Start: start, End: end}, exclude)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
