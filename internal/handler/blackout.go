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

// BlackoutHandler manages venue blackout periods: maintenance windows
// and closures that make a venue unbookable without a booking existing.
type BlackoutHandler struct {
	Engine *engine.Engine
}

// NewBlackoutHandler constructs a BlackoutHandler.
func NewBlackoutHandler(e *engine.Engine) *BlackoutHandler {
	if e == nil {
		panic("nil engine passed to NewBlackoutHandler")
	}
	return &BlackoutHandler{Engine: e}
}

// Create handles POST /v1/venues/:id/blackouts.
func (h *BlackoutHandler) Create(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	venue, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var body struct {
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
		Reason string    `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	blackout := &model.BlackoutPeriod{
		TenantID: tenant,
		VenueID:  venue,
		StartAt:  body.Start,
		EndAt:    body.End,
		Reason:   body.Reason,
	}
	if err := h.Engine.AddBlackout(c.Request().Context(), blackout); err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, blackout)
}

// List handles GET /v1/venues/:id/blackouts.
func (h *BlackoutHandler) List(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	venue, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	blackouts, err := h.Engine.ListBlackouts(c.Request().Context(), tenant, venue)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blackouts": blackouts})
}

// Delete handles DELETE /v1/blackouts/:id.
func (h *BlackoutHandler) Delete(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid blackout id"})
	}
	if err := h.Engine.RemoveBlackout(c.Request().Context(), tenant, id); err != nil {
		return writeEngineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
