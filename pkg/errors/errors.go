package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"

	// Substitution errors
	ErrUnresolvedToken ErrorCode = "UNRESOLVED_TOKEN"

	// Environment errors
	ErrToolMissing ErrorCode = "TOOL_MISSING"
	ErrStepFailed  ErrorCode = "STEP_FAILED"

	// Template validation errors
	ErrTemplateInvalid ErrorCode = "TEMPLATE_INVALID"
)

// fatalCodes abort the hook with a non-zero exit status.
var fatalCodes = map[ErrorCode]bool{
	ErrConfigLoad:      true,
	ErrConfigInvalid:   true,
	ErrToolMissing:     true,
	ErrUnresolvedToken: true,
	ErrTemplateInvalid: true,
	ErrInvalidInput:    true,
	ErrInternal:        true,
}

// PostgenError represents a structured error with code and details
type PostgenError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PostgenError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PostgenError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PostgenError) Is(target error) bool {
	var targetErr *PostgenError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PostgenError with the given code and message
func New(code ErrorCode, message string) *PostgenError {
	return &PostgenError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PostgenError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PostgenError {
	return &PostgenError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PostgenError
func Wrap(err error, code ErrorCode, message string) *PostgenError {
	if err == nil {
		return nil
	}
	return &PostgenError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PostgenError {
	if err == nil {
		return nil
	}
	return &PostgenError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PostgenError) WithDetail(key string, value interface{}) *PostgenError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var pgErr *PostgenError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PostgenError
func GetErrorCode(err error) ErrorCode {
	var pgErr *PostgenError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PostgenError
func GetErrorDetails(err error) map[string]interface{} {
	var pgErr *PostgenError
	if errors.As(err, &pgErr) {
		return pgErr.Details
	}
	return nil
}

// IsFatal reports whether err must abort the hook.
// Errors without a code are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	code := GetErrorCode(err)
	if code == ErrUnknown {
		return true
	}
	return fatalCodes[code]
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if IsFatal(err) {
		return 1
	}
	return 0
}
