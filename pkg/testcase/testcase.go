// Package testcase handles the representation of generated desktop UI test cases.
package testcase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Action represents the kind of step.
type Action string

// Action constants.
const (
	ActionClick  Action = "click"
	ActionType   Action = "type"
	ActionVerify Action = "verify"
	ActionWait   Action = "wait"
)

// Actions lists every supported action in declaration order.
var Actions = []Action{ActionClick, ActionType, ActionVerify, ActionWait}

// DefaultWait is used by wait steps that carry no value.
const DefaultWait = 1000 * time.Millisecond

// Known returns true if the action is one the engine can execute.
func (a Action) Known() bool {
	switch a {
	case ActionClick, ActionType, ActionVerify, ActionWait:
		return true
	}
	return false
}

// NeedsSelector returns true if the action targets a UI element.
func (a Action) NeedsSelector() bool {
	return a == ActionClick || a == ActionType || a == ActionVerify
}

// NeedsValue returns true if the action requires a value.
func (a Action) NeedsValue() bool {
	return a == ActionType || a == ActionVerify
}

// TestStep is a single abstract UI action.
type TestStep struct {
	Action      Action  `json:"action" yaml:"action"`
	Selector    string  `json:"selector,omitempty" yaml:"selector,omitempty"`
	Value       *string `json:"value,omitempty" yaml:"value,omitempty"`
	Description string  `json:"description" yaml:"description"`
}

// UnmarshalJSON accepts value as a JSON string, number or boolean and keeps
// its literal text, so {"action":"wait","value":2000} reads as "2000".
func (s *TestStep) UnmarshalJSON(data []byte) error {
	type plain TestStep
	var raw struct {
		plain
		Value json.RawMessage `json:"value,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = TestStep(raw.plain)
	s.Value = nil
	v, err := literalValue(raw.Value)
	if err != nil {
		return err
	}
	s.Value = v
	return nil
}

func literalValue(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		return &str, nil
	case '{', '[':
		return nil, fmt.Errorf("step value must be a string or number, got %s", raw)
	}

	var lit interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&lit); err != nil {
		return nil, err
	}
	str := string(raw)
	return &str, nil
}

// Click builds a click step.
func Click(selector, description string) TestStep {
	return TestStep{Action: ActionClick, Selector: selector, Description: description}
}

// Type builds a type step.
func Type(selector, value, description string) TestStep {
	return TestStep{Action: ActionType, Selector: selector, Value: &value, Description: description}
}

// Verify builds a verify step.
func Verify(selector, value, description string) TestStep {
	return TestStep{Action: ActionVerify, Selector: selector, Value: &value, Description: description}
}

// Wait builds a wait step. An empty value means the default wait.
func Wait(value, description string) TestStep {
	s := TestStep{Action: ActionWait, Description: description}
	if value != "" {
		s.Value = &value
	}
	return s
}

// HasValue returns true if a value was provided (an empty string counts).
func (s TestStep) HasValue() bool { return s.Value != nil }

// ValueString returns the value or "" when absent.
func (s TestStep) ValueString() string {
	if s.Value == nil {
		return ""
	}
	return *s.Value
}

// Describe returns a human-readable description.
func (s TestStep) Describe() string {
	if s.Description != "" {
		return s.Description
	}
	if s.Selector != "" {
		return fmt.Sprintf("%s %s", s.Action, s.Selector)
	}
	return string(s.Action)
}

// MissingFields returns the names of required fields absent for the step's action.
func (s TestStep) MissingFields() []string {
	var missing []string
	if s.Action.NeedsSelector() && s.Selector == "" {
		missing = append(missing, "selector")
	}
	if s.Action.NeedsValue() && s.Value == nil {
		missing = append(missing, "value")
	}
	return missing
}

// WaitDuration parses the value of a wait step as milliseconds.
// An absent or empty value yields DefaultWait.
func (s TestStep) WaitDuration() (time.Duration, error) {
	raw := strings.TrimSpace(s.ValueString())
	if raw == "" {
		return DefaultWait, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid wait time value: %q", s.ValueString())
	}
	if ms < 0 {
		return 0, fmt.Errorf("invalid wait time value: %q is negative", s.ValueString())
	}
	if ms > math.MaxInt64/int64(time.Millisecond) {
		return 0, fmt.Errorf("invalid wait time value: %q is too large", s.ValueString())
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// TestCase is an ordered list of steps against one application.
type TestCase struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	Description     string     `json:"description" yaml:"description"`
	Application     string     `json:"application" yaml:"application"`
	Steps           []TestStep `json:"steps" yaml:"steps"`
	ExpectedResults []string   `json:"expectedResults" yaml:"expectedResults"`
}

// DisplayName returns the name, falling back to the ID.
func (tc TestCase) DisplayName() string {
	if tc.Name != "" {
		return tc.Name
	}
	if tc.ID != "" {
		return tc.ID
	}
	return "unnamed test case"
}
