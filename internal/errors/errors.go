// Package errors defines the application error model: coded errors that
// carry a user-facing message, an optional offending field, and the
// underlying cause for errors.Is / errors.As chains.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an application error.
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "not_found"
	ErrCodeConflict      ErrorCode = "conflict"
	ErrCodeValidation    ErrorCode = "validation"
	ErrCodeDataIntegrity ErrorCode = "data_integrity"
	ErrCodeForeignKey    ErrorCode = "foreign_key"
	ErrCodeInternal      ErrorCode = "internal"
	ErrCodeTimeout       ErrorCode = "timeout"
	ErrCodeCanceled      ErrorCode = "canceled"
)

// AppError is a structured application error.
type AppError struct {
	Code    ErrorCode
	Message string
	// Field names the offending input field, when one can be singled out.
	Field string
	Cause error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

func coded(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFound builds a not_found error.
func NotFound(message string) *AppError { return coded(ErrCodeNotFound, message) }

// NotFoundf builds a not_found error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return coded(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict builds a conflict error.
func Conflict(message string) *AppError { return coded(ErrCodeConflict, message) }

// Conflictf builds a conflict error with a formatted message.
func Conflictf(format string, args ...any) *AppError {
	return coded(ErrCodeConflict, fmt.Sprintf(format, args...))
}

// Validation builds a validation error.
func Validation(message string) *AppError { return coded(ErrCodeValidation, message) }

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return coded(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// ValidationField builds a validation error attributed to one field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// DataIntegrity builds a data_integrity error: stored data violating a
// domain invariant, as opposed to bad input.
func DataIntegrity(message string) *AppError { return coded(ErrCodeDataIntegrity, message) }

// DataIntegrityf builds a data_integrity error with a formatted message.
func DataIntegrityf(format string, args ...any) *AppError {
	return coded(ErrCodeDataIntegrity, fmt.Sprintf(format, args...))
}

// ForeignKey builds a foreign_key error.
func ForeignKey(message string) *AppError { return coded(ErrCodeForeignKey, message) }

// Internal builds an internal error.
func Internal(message string) *AppError { return coded(ErrCodeInternal, message) }

// Internalf builds an internal error with a formatted message.
func Internalf(format string, args ...any) *AppError {
	return coded(ErrCodeInternal, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to err, keeping it as the cause.
// Returns nil for a nil err.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// as extracts the nearest *AppError in err's chain, or nil.
func as(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isCode(err error, code ErrorCode) bool {
	appErr := as(err)
	return appErr != nil && appErr.Code == code
}

// IsNotFound reports whether err carries the not_found code.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict reports whether err carries the conflict code.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation reports whether err carries the validation code.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsDataIntegrity reports whether err carries the data_integrity code.
func IsDataIntegrity(err error) bool { return isCode(err, ErrCodeDataIntegrity) }

// IsForeignKey reports whether err carries the foreign_key code.
func IsForeignKey(err error) bool { return isCode(err, ErrCodeForeignKey) }

// IsInternal reports whether err carries the internal code.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// IsTimeout reports whether err carries the timeout code.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled reports whether err carries the canceled code.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// GetCode extracts the ErrorCode from err, or "" for non-AppErrors.
func GetCode(err error) ErrorCode {
	if appErr := as(err); appErr != nil {
		return appErr.Code
	}
	return ""
}

// GetField extracts the offending field from err, or "" when unset.
func GetField(err error) string {
	if appErr := as(err); appErr != nil {
		return appErr.Field
	}
	return ""
}
