package core

// Status represents the outcome of a step or a test case.
type Status string

// Status values. Steps only ever use StatusPass and StatusFail.
const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsSuccess returns true if the status indicates success
func (s Status) IsSuccess() bool {
	return s == StatusPass
}

// CaseState is the lifecycle state of a test case execution.
type CaseState int

const (
	CaseNotStarted CaseState = iota // Created, launch not attempted
	CaseRunning                     // Application launched, steps executing
	CaseCompleted                   // Finalized with a terminal Status
)

// String returns the string representation of CaseState
func (s CaseState) String() string {
	switch s {
	case CaseNotStarted:
		return "not_started"
	case CaseRunning:
		return "running"
	case CaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryAssertion                       // Element not found, text mismatch
	ErrCategoryTimeout                         // Action or case deadline exceeded
	ErrCategoryAutomation                      // Automation server rejected an action
	ErrCategoryApp                             // Application could not be launched
	ErrCategoryConfig                          // Malformed step: missing field, bad value, unknown action
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryAutomation:
		return "automation"
	case ErrCategoryApp:
		return "app"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

