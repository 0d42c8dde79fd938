package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := ErrElementNotFound.WithCause(cause)

	got := err.Error()
	if !strings.Contains(got, "element not found") {
		t.Errorf("Error() = %q, should contain 'element not found'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrElementNotFound
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrTimeout
	newErr := original.WithMessage("click timed out")

	if newErr.Message != "click timed out" {
		t.Errorf("Message = %q, want 'click timed out'", newErr.Message)
	}
	if original.Message == "click timed out" {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := ErrVerificationMismatch.WithDetails(map[string]interface{}{"expected": "5"})
	newErr := original.WithDetails(map[string]interface{}{"actual": "6"})

	if newErr.Details["expected"] != "5" || newErr.Details["actual"] != "6" {
		t.Errorf("Details = %v", newErr.Details)
	}
	if _, ok := original.Details["actual"]; ok {
		t.Error("WithDetails() modified original error")
	}
	if ErrVerificationMismatch.Details != nil {
		t.Error("WithDetails() modified predefined error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err       *ExecutionError
		category  ErrorCategory
		code      string
		permanent bool
	}{
		{ErrLaunch, ErrCategoryApp, CodeLaunchError, true},
		{ErrElementNotFound, ErrCategoryAssertion, CodeElementNotFound, false},
		{ErrAction, ErrCategoryAutomation, CodeActionError, false},
		{ErrVerificationMismatch, ErrCategoryAssertion, CodeVerificationMismatch, true},
		{ErrMissingField, ErrCategoryConfig, CodeMissingField, true},
		{ErrInvalidWaitValue, ErrCategoryConfig, CodeInvalidWaitValue, true},
		{ErrUnknownActionType, ErrCategoryConfig, CodeUnknownActionType, true},
		{ErrTimeout, ErrCategoryTimeout, CodeTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Permanent() != tt.permanent {
				t.Errorf("Permanent() = %v, want %v", tt.err.Permanent(), tt.permanent)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestExecutionError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := fmt.Errorf("click: %w", ErrAction.WithCause(cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !errors.Is(err, ErrAction) {
		t.Error("errors.Is() should match by code")
	}
	if errors.Is(err, ErrElementNotFound) {
		t.Error("errors.Is() should not match a different code")
	}
}

func TestCodeOfAndIsPermanent(t *testing.T) {
	wrapped := fmt.Errorf("step 2: %w", ErrMissingField.WithMessage("missing selector"))

	if got := CodeOf(wrapped); got != CodeMissingField {
		t.Errorf("CodeOf() = %q, want %q", got, CodeMissingField)
	}
	if !IsPermanent(wrapped) {
		t.Error("IsPermanent() = false, want true")
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf(plain) should be empty")
	}
	if IsPermanent(errors.New("plain")) {
		t.Error("plain errors are retryable")
	}
	if IsPermanent(ErrElementNotFound) {
		t.Error("element_not_found is retryable")
	}
}
