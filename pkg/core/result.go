package core

import (
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// StepResult captures the outcome of executing a single step
type StepResult struct {
	// Identity
	Step  testcase.TestStep `json:"step"`  // Reference to the step definition
	Index int               `json:"index"` // 0-based position in the case

	// Status
	Status   Status        `json:"status"` // PASS or FAIL
	Category ErrorCategory `json:"-"`
	Code     string        `json:"code,omitempty"` // Error code when failed

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Error Details
	Error string `json:"error,omitempty"`

	// Retry Tracking
	Attempts int `json:"attempts,omitempty"` // Outer action attempts used
}

// TestResult captures the complete outcome of executing a test case
type TestResult struct {
	TestCase testcase.TestCase `json:"testCase"`

	// Status (aggregated from steps, or ERROR for launch failures)
	Status Status    `json:"status"`
	State  CaseState `json:"-"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`

	// Error info (case level)
	Error string `json:"error,omitempty"`

	// Results
	Steps []StepResult `json:"steps"`
}

// NewTestResult starts a result for tc. The status is PASS until a step fails.
func NewTestResult(tc testcase.TestCase, start time.Time) *TestResult {
	return &TestResult{
		TestCase:  tc,
		Status:    StatusPass,
		State:     CaseNotStarted,
		StartTime: start,
		Steps:     []StepResult{},
	}
}

// AddStep appends a step result, failing the case if the step failed.
func (r *TestResult) AddStep(sr StepResult) {
	r.Steps = append(r.Steps, sr)
	if sr.Status == StatusFail && r.Status == StatusPass {
		r.Status = StatusFail
	}
}

// Abort marks the case as ERROR with a case-level message.
func (r *TestResult) Abort(msg string) {
	r.Status = StatusError
	r.Error = msg
}

// Finish records the end timestamp and duration and settles the status
// from the step results.
func (r *TestResult) Finish(end time.Time) {
	r.Status = r.AggregateStatus()
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
	if r.Duration < 0 {
		r.Duration = 0
	}
	r.State = CaseCompleted
}

// AggregateStatus determines the case status from step results
// Rules:
// - Any failure outside step execution → StatusError
// - Any failed step → StatusFail
// - Otherwise → StatusPass
func (r *TestResult) AggregateStatus() Status {
	if r.Status == StatusError {
		return StatusError
	}
	for _, step := range r.Steps {
		if step.Status == StatusFail {
			return StatusFail
		}
	}
	return StatusPass
}

// PassedSteps counts passing steps.
func (r *TestResult) PassedSteps() int {
	n := 0
	for _, step := range r.Steps {
		if step.Status == StatusPass {
			n++
		}
	}
	return n
}

// SuiteResult captures the complete outcome of executing multiple test cases
type SuiteResult struct {
	// Identity
	Application string `json:"application"`
	RunID       string `json:"runId"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Results []*TestResult `json:"results"`

	// Summary
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// ComputeSummary calculates case counts from the Results slice
func (s *SuiteResult) ComputeSummary() {
	s.Total = len(s.Results)
	s.Passed = 0
	s.Failed = 0
	s.Errored = 0

	for _, r := range s.Results {
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusError:
			s.Errored++
		}
	}
}

// Statuses returns the ordered case statuses.
func (s *SuiteResult) Statuses() []Status {
	out := make([]Status, len(s.Results))
	for i, r := range s.Results {
		out[i] = r.Status
	}
	return out
}

// AllPassed returns true if there was at least one case and every case passed.
func (s *SuiteResult) AllPassed() bool {
	for _, r := range s.Results {
		if !r.Status.IsSuccess() {
			return false
		}
	}
	return len(s.Results) > 0
}
