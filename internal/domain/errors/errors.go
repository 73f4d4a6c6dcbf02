package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrRetryable           = errors.New("outcome unknown, retry later")
	ErrConflict            = errors.New("concurrent modification")
)

// Error codes rendered to clients
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeNotAuthorized       = "NOT_AUTHORIZED"
	CodeAlreadyProcessed    = "ALREADY_PROCESSED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeRetryable           = "RETRYABLE"
	CodeValidation          = "VALIDATION"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func AlreadyExists(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyExists, message, ErrAlreadyExists)
}

func NotAuthorized(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeNotAuthorized, message, ErrNotAuthorized)
}

func AlreadyProcessed(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyProcessed, message, ErrAlreadyProcessed)
}

func UpstreamUnavailable(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeUpstreamUnavailable, message, errors.Join(ErrUpstreamUnavailable, err))
}

func Retryable(message string, err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeRetryable, message, errors.Join(ErrRetryable, err))
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// FromError converts any error into an AppError. Bare sentinels map to their
// kind; everything else becomes an internal error.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return AlreadyExists(err.Error())
	case errors.Is(err, ErrNotAuthorized):
		return NotAuthorized(err.Error())
	case errors.Is(err, ErrAlreadyProcessed):
		return AlreadyProcessed(err.Error())
	case errors.Is(err, ErrInvalidInput):
		return BadRequest(err.Error())
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized(err.Error())
	case errors.Is(err, ErrUpstreamUnavailable):
		return UpstreamUnavailable(err.Error(), nil)
	case errors.Is(err, ErrRetryable), errors.Is(err, ErrConflict):
		return Retryable(err.Error(), nil)
	}
	return InternalError(err)
}
