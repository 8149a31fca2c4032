// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrPaymentRequired     = errors.New("payment required")
	ErrSignatureInvalid    = errors.New("invalid signature")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrSessionInvalid      = errors.New("session invalid")
	ErrRateLimited         = errors.New("rate limited")
)

// AppError is an error that knows how it should be rendered to a client.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		"DUPLICATE",
	)
}

func PaymentRequiredError(message string) *AppError {
	return NewAppError(
		ErrPaymentRequired,
		message,
		http.StatusPaymentRequired,
		"PAYMENT_REQUIRED",
	)
}

func SignatureInvalidError() *AppError {
	return NewAppError(
		ErrSignatureInvalid,
		"invalid signature",
		http.StatusUnauthorized,
		"INVALID_SIGNATURE",
	)
}

func SessionInvalidError() *AppError {
	return NewAppError(
		ErrSessionInvalid,
		"session is invalid or expired",
		http.StatusUnauthorized,
		"SESSION_INVALID",
	)
}

func UpstreamError(message string) *AppError {
	return NewAppError(
		ErrUpstreamUnavailable,
		message,
		http.StatusInternalServerError,
		"PAYMENT_SERVICE_UNAVAILABLE",
	)
}

func RateLimitedError(retryAfterSeconds int) *AppError {
	return NewAppError(
		ErrRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfterSeconds),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	)
}

func internalError() *AppError {
	return NewAppError(
		nil,
		"internal server error",
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
	)
}

// DuplicateKeyError names the unique field a write collided on.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate " + e.Field
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}
