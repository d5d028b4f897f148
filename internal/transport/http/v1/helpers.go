package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"agentgate/internal/domain"
)

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrToolNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrToolSpecInvalid),
		errors.Is(err, domain.ErrInvalidToolName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrToolFetch),
		errors.Is(err, domain.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
}
