package errors

import (
	"log"
	"net/http"
	"strings"

	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/jordanlanch/scribely/pkg/models"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a validation error without exposing internal details
func ValidationError(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// UnauthorizedError returns an unauthorized error with a user-facing message
func UnauthorizedError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}

// StatusFor maps a domain error code to its HTTP status
func StatusFor(err error) int {
	switch domain.GetErrorCode(err) {
	case domain.ErrCodeValidation, domain.ErrCodeMissingEmail:
		return http.StatusBadRequest
	case domain.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case domain.ErrCodeQuotaExhausted:
		return http.StatusPaymentRequired
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadySubscribed:
		return http.StatusConflict
	case domain.ErrCodeTransport, domain.ErrCodeFormat, domain.ErrCodeMissingRedirectURL:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DomainError writes err with the status of its code. The raw error is logged;
// the body carries only the code and the user-facing message.
func DomainError(c echo.Context, err error) error {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] Path: %s, Error: %v", domain.GetErrorCode(err), c.Request().URL.Path, err)
	}

	return c.JSON(status, models.ErrorResponse{
		Error:   strings.ToLower(domain.GetErrorCode(err)),
		Message: domain.UserMessage(err),
	})
}
