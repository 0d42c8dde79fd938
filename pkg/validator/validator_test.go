package validator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

const validJSON = `[
  {
    "id": "calc-1",
    "name": "Press one",
    "application": "calc",
    "steps": [
      {"action": "click", "selector": "name:One", "description": "Click 1"},
      {"action": "wait", "value": "250", "description": "Pause"},
      {"action": "verify", "selector": "name:Display", "value": "1", "description": "Check"}
    ]
  }
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate_SingleFile(t *testing.T) {
	file := writeFile(t, t.TempDir(), "calc-test-cases.json", validJSON)

	result := New().Validate(file)

	if !result.IsValid() {
		t.Errorf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Cases) != 1 {
		t.Errorf("expected 1 test case, got %d", len(result.Cases))
	}
	if len(result.Files) != 1 || result.Files[0] != file {
		t.Errorf("Files = %v", result.Files)
	}
}

func TestValidate_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", validJSON)
	writeFile(t, dir, "b.yaml", `
- id: notepad-1
  name: Type text
  application: notepad
  steps:
    - action: type
      selector: "role:document"
      value: "hello"
      description: Type greeting
`)
	writeFile(t, dir, "notes.txt", "ignored")

	result := New().Validate(dir)

	if !result.IsValid() {
		t.Errorf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Files) != 2 {
		t.Errorf("expected 2 files, got %v", result.Files)
	}
	if len(result.Cases) != 2 {
		t.Errorf("expected 2 test cases, got %d", len(result.Cases))
	}
}

func TestValidate_EmptyDirectory(t *testing.T) {
	result := New().Validate(t.TempDir())
	if result.IsValid() {
		t.Error("expected error for directory without case files")
	}
}

func TestValidate_NonExistentPath(t *testing.T) {
	result := New().Validate("/nonexistent/cases.json")
	if result.IsValid() {
		t.Fatal("expected error for nonexistent path")
	}
	if !strings.Contains(result.Errors[0].Error(), "cannot access") {
		t.Errorf("unexpected error: %v", result.Errors[0])
	}
}

func TestValidate_ParseError(t *testing.T) {
	file := writeFile(t, t.TempDir(), "broken.json", `[{"id": `)

	result := New().Validate(file)
	if result.IsValid() {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(result.Errors[0].Error(), "parse error") {
		t.Errorf("unexpected error: %v", result.Errors[0])
	}
	if len(result.Files) != 0 {
		t.Errorf("unparseable file should not be listed: %v", result.Files)
	}
}

func TestValidate_StepProblems(t *testing.T) {
	file := writeFile(t, t.TempDir(), "bad.json", `[
  {
    "id": "bad",
    "name": "Bad steps",
    "steps": [
      {"action": "click", "description": "no selector"},
      {"action": "type", "description": "nothing"},
      {"action": "wait", "value": "soon", "description": "bad wait"},
      {"action": "drag", "selector": "name:X", "description": "unknown"},
      {"action": "verify", "selector": "name:Y", "value": "", "description": "empty value ok"}
    ]
  }
]`)

	result := New().Validate(file)

	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}

	wantSteps := []int{1, 2, 3, 4}
	for i, err := range result.Errors {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("error %d is %T", i, err)
		}
		if ve.Step != wantSteps[i] {
			t.Errorf("error %d step = %d, want %d", i, ve.Step, wantSteps[i])
		}
		if ve.Case != "Bad steps" {
			t.Errorf("error %d case = %q", i, ve.Case)
		}
	}

	if msg := result.Errors[1].Error(); !strings.Contains(msg, "selector and value") {
		t.Errorf("type error = %q", msg)
	}
	if msg := result.Errors[3].Error(); !strings.Contains(msg, `unknown action "drag"`) {
		t.Errorf("unknown action error = %q", msg)
	}
}

func TestValidate_DuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", validJSON)
	writeFile(t, dir, "b.json", validJSON)

	result := New().Validate(dir)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Error(), `duplicate id "calc-1"`) {
		t.Errorf("unexpected error: %v", result.Errors[0])
	}
}

func TestCheckCase_ZeroSteps(t *testing.T) {
	if errs := CheckCase("x.json", testcase.TestCase{Name: "empty"}); len(errs) != 0 {
		t.Errorf("zero-step case should be valid, got %v", errs)
	}
}

func TestValidationError_Format(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{File: "f.json", Message: "m"}, "f.json: m"},
		{ValidationError{File: "f.json", Case: "c", Message: "m"}, "f.json: c: m"},
		{ValidationError{File: "f.json", Case: "c", Step: 2, Message: "m"}, "f.json: c: step 2: m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
