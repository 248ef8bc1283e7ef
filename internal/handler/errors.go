package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuecore/booking-engine/internal/engine"
)

// writeEngineError maps the engine's error taxonomy onto HTTP status
// codes.  Conflicts include the machine-readable code and the suggested
// alternatives so a client can offer a better slot instead of a bare
// rejection.  Anything unrecognized is treated as a retryable
// infrastructure failure.
func writeEngineError(c echo.Context, err error) error {
	var ve *engine.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	}
	var ne *engine.NotFoundError
	if errors.As(err, &ne) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": ne.Error()})
	}
	var ce *engine.ConflictError
	if errors.As(err, &ce) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        ce.Message,
			"code":         ce.Code,
			"alternatives": ce.Alternatives,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "retryable": true})
}
