// Package validator validates test case files before execution.
// It parses all files upfront and reports every structural problem at once.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Case    string // display name, empty for file-level errors
	Step    int    // 1-based, zero for case-level errors
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Case == "":
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	case e.Step == 0:
		return fmt.Sprintf("%s: %s: %s", e.File, e.Case, e.Message)
	}
	return fmt.Sprintf("%s: %s: step %d: %s", e.File, e.Case, e.Step, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Files is the list of case files in execution order.
	Files []string
	// Cases holds every parsed case across all files.
	Cases []testcase.TestCase
	// Errors contains all validation errors found.
	Errors []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator validates case files.
type Validator struct{}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// Validate validates a file or directory.
func (v *Validator) Validate(path string) *Result {
	result := &Result{}

	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: fmt.Sprintf("cannot access: %v", err),
		})
		return result
	}

	var files []string
	if info.IsDir() {
		files, err = collectCaseFiles(path)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: fmt.Sprintf("failed to scan directory: %v", err),
			})
			return result
		}
		if len(files) == 0 {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: "no test case files found",
			})
			return result
		}
	} else {
		files = []string{path}
	}

	seen := make(map[string]string)
	for _, file := range files {
		v.validateFile(file, result, seen)
	}

	return result
}

// collectCaseFiles finds all .json/.yaml/.yml files in a directory.
func collectCaseFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

func (v *Validator) validateFile(file string, result *Result, seen map[string]string) {
	cases, err := testcase.LoadFile(file)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    file,
			Message: fmt.Sprintf("parse error: %v", err),
		})
		return
	}

	result.Files = append(result.Files, file)
	for _, tc := range cases {
		if tc.ID != "" {
			if prev, dup := seen[tc.ID]; dup {
				result.Errors = append(result.Errors, &ValidationError{
					File:    file,
					Case:    tc.DisplayName(),
					Message: fmt.Sprintf("duplicate id %q (first defined in %s)", tc.ID, prev),
				})
			} else {
				seen[tc.ID] = file
			}
		}
		result.Errors = append(result.Errors, CheckCase(file, tc)...)
		result.Cases = append(result.Cases, tc)
	}
}

// CheckCase returns every problem the executor would hit running tc.
// A case with zero steps is valid.
func CheckCase(file string, tc testcase.TestCase) []error {
	var errs []error
	name := tc.DisplayName()

	for i, step := range tc.Steps {
		fail := func(format string, args ...interface{}) {
			errs = append(errs, &ValidationError{
				File:    file,
				Case:    name,
				Step:    i + 1,
				Message: fmt.Sprintf(format, args...),
			})
		}

		if !step.Action.Known() {
			fail("unknown action %q", step.Action)
			continue
		}
		if missing := step.MissingFields(); len(missing) > 0 {
			fail("%s action is missing %s", step.Action, strings.Join(missing, " and "))
		}
		if step.Action == testcase.ActionWait {
			if _, err := step.WaitDuration(); err != nil {
				fail("%v", err)
			}
		}
	}
	return errs
}
