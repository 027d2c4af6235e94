package camera

import (
	"errors"
	"fmt"
)

// ErrorCode classifies camera failures.
type ErrorCode string

// Error codes.
const (
	ErrCodeDeviceAccess        ErrorCode = "DEVICE_ACCESS"
	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrCodeConfigurationFailed ErrorCode = "CONFIGURATION_FAILED"
	ErrCodeNoCamera            ErrorCode = "NO_CAMERA"
	ErrCodeInvalidSizes        ErrorCode = "INVALID_SIZES"
)

// Error is a camera failure with a code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// NewError creates a new camera error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasCode checks if the error matches a specific code.
func (e *Error) HasCode(code ErrorCode) bool {
	return e.Code == code
}

// IsCode reports whether err or anything it wraps is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	var camErr *Error
	if errors.As(err, &camErr) {
		return camErr.HasCode(code)
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var camErr *Error
	if errors.As(err, &camErr) {
		return camErr.Code
	}
	return ""
}
