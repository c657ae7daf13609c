package errors

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/models"
)

// Domain maps a domain error onto the matching HTTP response. Internal
// details are logged, never exposed.
func Domain(c echo.Context, err error) error {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeNotFound:
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case domain.ErrCodeValidation:
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	case domain.ErrCodeInvalidState:
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "invalid_state",
			Message: err.Error(),
		})
	case domain.ErrCodeRateLimited:
		return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:   "rate_limited",
			Message: "The upstream provider is rate limiting requests. Try again later.",
		})
	case domain.ErrCodeAuth, domain.ErrCodeFatal:
		log.Printf("[PROVIDER ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "provider_error",
			Message: "The upstream provider rejected the request.",
		})
	case domain.ErrCodeTransient:
		log.Printf("[PROVIDER ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "provider_unavailable",
			Message: "The upstream provider is temporarily unavailable. Try again later.",
		})
	}
	return InternalError(c, err)
}

// ValidationError returns a generic validation error without exposing internal details
func ValidationError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found.",
	})
}
