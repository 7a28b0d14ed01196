// Package apperr defines the error taxonomy shared across the checkout core.
// Application services return *Error values; the transport layer maps codes to
// HTTP statuses without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	// CodeInvalidArgument marks malformed or missing caller input. Retrying
	// without changing the input cannot succeed.
	CodeInvalidArgument Code = "invalid_argument"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeOutOfRange marks a business-rule violation against current state,
	// such as a cart requesting more stock than is available.
	CodeOutOfRange Code = "out_of_range"
	// CodeOutOfStock marks an insufficient-stock failure at decrement time.
	CodeOutOfStock Code = "out_of_stock"
	// CodeFailedPrecondition marks incomplete dependent setup, such as a
	// business without a payout account.
	CodeFailedPrecondition Code = "failed_precondition"
	// CodeUnauthenticated marks a forged or malformed notification signature.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeInternal marks unexpected failures; the whole operation is safe to
	// retry.
	CodeInternal Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an error that keeps its cause available to errors.Is/As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

func InvalidArgument(format string, args ...any) *Error {
	return New(CodeInvalidArgument, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func OutOfRange(format string, args ...any) *Error {
	return New(CodeOutOfRange, format, args...)
}

func OutOfStock(format string, args ...any) *Error {
	return New(CodeOutOfStock, format, args...)
}

func FailedPrecondition(format string, args ...any) *Error {
	return New(CodeFailedPrecondition, format, args...)
}

func Unauthenticated(format string, args ...any) *Error {
	return New(CodeUnauthenticated, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(CodeInternal, format, args...)
}

// CodeOf extracts the taxonomy code from err, or CodeInternal when err carries
// no code.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
