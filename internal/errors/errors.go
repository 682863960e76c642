// Package errors provides the application error type used by services and
// handlers. Clients only ever see Code and Message; the wrapped internal
// error is for logs.
package errors

import (
	"errors"
	"net/http"

	"folio/internal/ledger"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid password", StatusCode: http.StatusUnauthorized}
	ErrEditForbidden      = &AppError{Code: "EDIT_FORBIDDEN", Message: "Editing is disabled for this portfolio", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Ledger errors.
var (
	ErrInsufficientFunds  = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Not enough cash for this purchase", StatusCode: http.StatusBadRequest}
	ErrQuoteUnavailable   = &AppError{Code: "QUOTE_UNAVAILABLE", Message: "No quote available for this ticker", StatusCode: http.StatusBadGateway}
	ErrPersistenceFailure = &AppError{Code: "PERSISTENCE_FAILURE", Message: "Changes could not be saved", StatusCode: http.StatusInternalServerError}
)

// FromLedger translates ledger sentinel errors into AppErrors. The ledger's
// message is user-facing and kept as the AppError message.
func FromLedger(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrValidation):
		return WithMessage(ErrInvalidInput, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return WithMessage(ErrInsufficientFunds, err.Error())
	}
	return Wrap(ErrInternalServer, err)
}
