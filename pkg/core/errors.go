package core

import (
	"errors"
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, launch_error, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context (selector, attempts, expected/actual)
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches predefined errors by code, so errors.Is(err, ErrElementNotFound)
// holds for any copy produced by the With* builders.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Permanent returns true if retrying the same input cannot change the outcome.
func (e *ExecutionError) Permanent() bool {
	switch e.Code {
	case CodeVerificationMismatch, CodeMissingField, CodeInvalidWaitValue,
		CodeUnknownActionType, CodeLaunchError, CodeTimeout:
		return true
	}
	return false
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Error codes.
const (
	CodeLaunchError          = "launch_error"
	CodeElementNotFound      = "element_not_found"
	CodeActionError          = "action_error"
	CodeVerificationMismatch = "verification_mismatch"
	CodeMissingField         = "missing_field"
	CodeInvalidWaitValue     = "invalid_wait_value"
	CodeUnknownActionType    = "unknown_action_type"
	CodeTimeout              = "timeout"
)

// Predefined errors
var (
	// Environment errors
	ErrLaunch = &ExecutionError{
		Category: ErrCategoryApp,
		Code:     CodeLaunchError,
		Message:  "failed to launch application",
	}

	// Transient errors, retried by the action layer
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     CodeElementNotFound,
		Message:  "element not found",
	}
	ErrAction = &ExecutionError{
		Category: ErrCategoryAutomation,
		Code:     CodeActionError,
		Message:  "automation action failed",
	}

	// Content errors
	ErrVerificationMismatch = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     CodeVerificationMismatch,
		Message:  "text does not contain expected value",
	}

	// Malformed steps
	ErrMissingField = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     CodeMissingField,
		Message:  "missing required field",
	}
	ErrInvalidWaitValue = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     CodeInvalidWaitValue,
		Message:  "invalid wait value",
	}
	ErrUnknownActionType = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     CodeUnknownActionType,
		Message:  "unknown action type",
	}

	// Deadlines
	ErrTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     CodeTimeout,
		Message:  "operation timed out",
	}
)

// AsExecutionError extracts the first ExecutionError in err's chain.
func AsExecutionError(err error) (*ExecutionError, bool) {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// CodeOf returns the code of the first ExecutionError in err's chain, or "".
func CodeOf(err error) string {
	if ee, ok := AsExecutionError(err); ok {
		return ee.Code
	}
	return ""
}

// IsPermanent reports whether err carries an ExecutionError that must not be retried.
func IsPermanent(err error) bool {
	ee, ok := AsExecutionError(err)
	return ok && ee.Permanent()
}

// IsCode reports whether err carries an ExecutionError with the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
