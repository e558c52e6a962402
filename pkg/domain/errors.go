package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeAuthRequired       = "AUTH_REQUIRED"
	ErrCodeQuotaExhausted     = "QUOTA_EXHAUSTED"
	ErrCodeTransport          = "TRANSPORT_ERROR"
	ErrCodeFormat             = "FORMAT_ERROR"
	ErrCodeAlreadySubscribed  = "ALREADY_SUBSCRIBED"
	ErrCodeMissingEmail       = "MISSING_EMAIL"
	ErrCodeMissingRedirectURL = "MISSING_REDIRECT_URL"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Error constructors

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewAuthRequiredError creates an error for requests without an identity
func NewAuthRequiredError() error {
	return &DomainError{
		Code:    ErrCodeAuthRequired,
		Message: "Please sign in to continue",
	}
}

// NewQuotaExhaustedError creates a new quota exhausted error
func NewQuotaExhaustedError(limit int) error {
	return &DomainError{
		Code:    ErrCodeQuotaExhausted,
		Message: fmt.Sprintf("You've reached your limit of %d generations. Please upgrade your plan to continue generating content.", limit),
	}
}

// NewTransportError wraps a failed call to an external provider
func NewTransportError(msg string, err error) error {
	return &DomainError{
		Code:    ErrCodeTransport,
		Message: msg,
		Err:     err,
	}
}

// NewFormatError creates an error for a malformed provider response
func NewFormatError(msg string) error {
	return &DomainError{
		Code:    ErrCodeFormat,
		Message: msg,
	}
}

// NewAlreadySubscribedError creates an error for a duplicate active subscription
func NewAlreadySubscribedError() error {
	return &DomainError{
		Code:    ErrCodeAlreadySubscribed,
		Message: "You are already subscribed to this plan",
	}
}

// NewMissingEmailError creates an error for an identity without email
func NewMissingEmailError() error {
	return &DomainError{
		Code:    ErrCodeMissingEmail,
		Message: "No email found",
	}
}

// NewMissingRedirectURLError creates an error for a checkout session without URL
func NewMissingRedirectURLError() error {
	return &DomainError{
		Code:    ErrCodeMissingRedirectURL,
		Message: "No checkout URL received",
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// Helper functions to check error types

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsAuthRequired checks if the error is an auth required error
func IsAuthRequired(err error) bool { return hasCode(err, ErrCodeAuthRequired) }

// IsQuotaExhausted checks if the error is a quota exhausted error
func IsQuotaExhausted(err error) bool { return hasCode(err, ErrCodeQuotaExhausted) }

// IsTransport checks if the error is a provider transport error
func IsTransport(err error) bool { return hasCode(err, ErrCodeTransport) }

// IsFormat checks if the error is a malformed response error
func IsFormat(err error) bool { return hasCode(err, ErrCodeFormat) }

// IsAlreadySubscribed checks if the error is a duplicate subscription error
func IsAlreadySubscribed(err error) bool { return hasCode(err, ErrCodeAlreadySubscribed) }

// IsMissingEmail checks if the error is a missing email error
func IsMissingEmail(err error) bool { return hasCode(err, ErrCodeMissingEmail) }

// IsMissingRedirectURL checks if the error is a missing checkout URL error
func IsMissingRedirectURL(err error) bool { return hasCode(err, ErrCodeMissingRedirectURL) }

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// UserMessage returns the message that is safe to show to the user.
// Non-domain errors collapse to a generic message.
func UserMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "An internal error occurred"
}
