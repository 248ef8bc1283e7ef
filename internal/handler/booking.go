package handler

import (
	"net/http"  // HTTP status codes
	"strconv"   // parsing query parameters
	"time"      // parsing interval timestamps

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/venuecore/booking-engine/internal/engine"
	"github.com/venuecore/booking-engine/internal/middleware"
	"github.com/venuecore/booking-engine/internal/model"
)

// BookingHandler exposes the booking engine over HTTP.  All methods
// assume the tenant middleware has already resolved and validated the
// caller's tenant; they return 401-style failures as 400 because the
// tenant header is an input contract, not an authentication scheme.
type BookingHandler struct {
	Engine *engine.Engine
}

// NewBookingHandler constructs a BookingHandler.  The engine must be
// non-nil.
func NewBookingHandler(e *engine.Engine) *BookingHandler {
	if e == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: e}
}

// createBookingRequest is the JSON body of POST /v1/bookings.  The
// idempotency key may alternatively travel in the Idempotency-Key
// header, which wins over the body when both are present.
type createBookingRequest struct {
	VenueID        uuid.UUID `json:"venue_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	CustomerRef    string    `json:"customer_ref"`
	GuestCount     int       `json:"guest_count"`
	EventType      string    `json:"event_type"`
	Notes          string    `json:"notes"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// Create handles POST /v1/bookings.  It reserves the requested interval
// as a temp_hold and returns 201 with the booking.  An interval overlap
// returns 409 carrying the conflict code and alternative slots.
func (h *BookingHandler) Create(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.VenueID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_id is required"})
	}
	key := c.Request().Header.Get("Idempotency-Key")
	if key == "" {
		key = body.IdempotencyKey
	}

	booking, err := h.Engine.CreateBooking(c.Request().Context(), engine.CreateBookingInput{
		TenantID:       tenant,
		VenueID:        body.VenueID,
		Interval:       model.Interval{Start: body.Start, End: body.End},
		CustomerRef:    body.CustomerRef,
		GuestCount:     body.GuestCount,
		EventType:      body.EventType,
		Notes:          body.Notes,
		IdempotencyKey: key,
	})
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Engine.GetBooking(c.Request().Context(), tenant, id)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// List handles GET /v1/bookings with optional limit/offset query
// parameters, newest bookings first.
func (h *BookingHandler) List(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.Engine.ListBookings(c.Request().Context(), tenant, limit, offset)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// transitionRequest is the JSON body of POST /v1/bookings/:id/transitions.
type transitionRequest struct {
	Event   string                   `json:"event"`
	Context engine.TransitionContext `json:"context"`
}

// Transition handles POST /v1/bookings/:id/transitions.  A rejected
// transition is a 422 with the result payload, not an error status:
// clients poll "what can I do next" without exception-driven flow.
func (h *BookingHandler) Transition(c echo.Context) error {
	tenant, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not resolved"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body transitionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Event == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event is required"})
	}

	res, err := h.Engine.Transition(c.Request().Context(), tenant, id, model.Event(body.Event), body.Context)
	if err != nil {
		return writeEngineError(c, err)
	}
	if !res.Success {
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
	return c.JSON(http.StatusOK, res)
}
