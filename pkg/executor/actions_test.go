package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/automation/mock"
	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

func methods(m *mock.Client) []string {
	var out []string
	for _, c := range m.Calls() {
		out = append(out, c.Method)
	}
	return out
}

func TestExecute_Click(t *testing.T) {
	m := mock.New(mock.Config{}).AddElement("name:Seven", &mock.Element{})
	x := NewStepExecutor(m, fastTiming())

	attempts, err := x.Execute(context.Background(), testcase.Click("name:Seven", "press 7"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	got := strings.Join(methods(m), ",")
	if got != "locate,bounds,click" {
		t.Errorf("calls = %s", got)
	}
}

func TestExecute_ClickRetriesTransientFailure(t *testing.T) {
	m := mock.New(mock.Config{}).AddElement("name:Seven", &mock.Element{
		ClickErrors: []error{errors.New("busy")},
	})
	x := NewStepExecutor(m, fastTiming())

	attempts, err := x.Execute(context.Background(), testcase.Click("name:Seven", "press 7"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if got := m.CallCount("click"); got != 2 {
		t.Errorf("clicks = %d, want 2", got)
	}
	if got := m.Probes("name:Seven"); got != 2 {
		t.Errorf("each attempt should re-locate, probes = %d", got)
	}
}

func TestExecute_ClickExhausted(t *testing.T) {
	m := mock.New(mock.Config{}).AddElement("name:Seven", &mock.Element{ClickErr: errors.New("stuck")})
	x := NewStepExecutor(m, fastTiming())

	attempts, err := x.Execute(context.Background(), testcase.Click("name:Seven", "press 7"))
	if !core.IsCode(err, core.CodeActionError) {
		t.Fatalf("expected action_error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	msg := err.Error()
	for _, want := range []string{"click", "name:Seven", "3 attempt", "stuck"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestExecute_ElementNeverAppears(t *testing.T) {
	m := mock.New(mock.Config{})
	x := NewStepExecutor(m, fastTiming())

	attempts, err := x.Execute(context.Background(), testcase.Click("name:Ghost", "press ghost"))
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if got := m.Probes("name:Ghost"); got != 9 {
		t.Errorf("probes = %d, want FindAttempts*ActionRetries = 9", got)
	}
	if got := m.CallCount("click"); got != 0 {
		t.Errorf("clicks = %d, want 0", got)
	}
}

func TestExecute_TypeOneUnitPerCharacter(t *testing.T) {
	m := mock.New(mock.Config{}).AddElement("name:Editor", &mock.Element{})
	x := NewStepExecutor(m, fastTiming())

	if _, err := x.Execute(context.Background(), testcase.Type("name:Editor", "héllo", "type greeting")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := m.Typed("name:Editor"); got != "héllo" {
		t.Errorf("typed = %q", got)
	}
	if got := m.CallCount("type"); got != 5 {
		t.Errorf("type calls = %d, want 5", got)
	}
}

func TestExecute_TypeEmptyValue(t *testing.T) {
	m := mock.New(mock.Config{}).AddElement("name:Editor", &mock.Element{})
	x := NewStepExecutor(m, fastTiming())

	if _, err := x.Execute(context.Background(), testcase.Type("name:Editor", "", "type nothing")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := m.CallCount("type"); got != 0 {
		t.Errorf("type calls = %d, want 0", got)
	}
}

func TestExecute_VerifyContainment(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		wantErr  bool
	}{
		{"substring", "Display is 42", "42", false},
		{"exact", "42", "42", false},
		{"empty expected", "anything", "", false},
		{"mismatch", "Display is 7", "42", true},
		{"case sensitive", "Display is HELLO", "hello", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.New(mock.Config{}).AddElement("name:Display", &mock.Element{Text: tt.text})
			x := NewStepExecutor(m, fastTiming())

			attempts, err := x.Execute(context.Background(), testcase.Verify("name:Display", tt.expected, "check display"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, core.ErrVerificationMismatch) {
				t.Errorf("expected verification mismatch, got %v", err)
			}
			if attempts != 1 {
				t.Errorf("mismatch must not be retried, attempts = %d", attempts)
			}
			if got := m.CallCount("text"); got != 1 {
				t.Errorf("text reads = %d, want 1", got)
			}
			ee, _ := core.AsExecutionError(err)
			if ee.Details["expected"] != tt.expected || ee.Details["actual"] != tt.text {
				t.Errorf("details = %v", ee.Details)
			}
		})
	}
}

func TestExecute_VerifyReadFailureRetried(t *testing.T) {
	m := mock.New(mock.Config{}).AddElement("name:Display", &mock.Element{TextErr: errors.New("no text pattern")})
	x := NewStepExecutor(m, fastTiming())

	attempts, err := x.Execute(context.Background(), testcase.Verify("name:Display", "42", "check display"))
	if !core.IsCode(err, core.CodeActionError) {
		t.Fatalf("expected action_error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestExecute_CooldownOnlyForClickAndType(t *testing.T) {
	timing := fastTiming()
	timing.RetryCooldown = 200 * time.Millisecond

	tests := []struct {
		name     string
		elem     *mock.Element
		step     testcase.TestStep
		cooldown bool
	}{
		{"click", &mock.Element{ClickErr: errors.New("busy")}, testcase.Click("name:Seven", "press 7"), true},
		{"type", &mock.Element{TypeErr: errors.New("busy")}, testcase.Type("name:Seven", "7", "type 7"), true},
		{"verify", &mock.Element{TextErr: errors.New("no text pattern")}, testcase.Verify("name:Seven", "7", "check 7"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.New(mock.Config{}).AddElement("name:Seven", tt.elem)
			x := NewStepExecutor(m, timing)

			start := time.Now()
			attempts, err := x.Execute(context.Background(), tt.step)
			elapsed := time.Since(start)
			if err == nil {
				t.Fatal("expected failure")
			}
			if attempts != 3 {
				t.Errorf("attempts = %d, want 3", attempts)
			}
			// two gaps between three attempts
			if tt.cooldown && elapsed < 2*timing.RetryCooldown {
				t.Errorf("elapsed = %v, want at least two cooldowns", elapsed)
			}
			if !tt.cooldown && elapsed >= timing.RetryCooldown {
				t.Errorf("elapsed = %v, verify should not cool down", elapsed)
			}
		})
	}
}

func TestExecute_Wait(t *testing.T) {
	m := mock.New(mock.Config{LaunchError: errors.New("adapter state is irrelevant")})
	x := NewStepExecutor(m, fastTiming())

	start := time.Now()
	attempts, err := x.Execute(context.Background(), testcase.Wait("250", "pause"))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if elapsed < 250*time.Millisecond || elapsed > 2*time.Second {
		t.Errorf("elapsed = %v, want ≈250ms", elapsed)
	}
	if len(m.Calls()) != 0 {
		t.Errorf("wait should not touch the client, calls = %v", m.Calls())
	}
}

func TestExecute_ValidationFailuresSkipClient(t *testing.T) {
	noValueType := testcase.TestStep{Action: testcase.ActionType, Selector: "name:Editor", Description: "type"}
	tests := []struct {
		name string
		step testcase.TestStep
		code string
	}{
		{"click without selector", testcase.TestStep{Action: testcase.ActionClick, Description: "click"}, core.CodeMissingField},
		{"type without value", noValueType, core.CodeMissingField},
		{"verify without selector", testcase.Verify("", "42", "verify"), core.CodeMissingField},
		{"wait non-numeric", testcase.Wait("soon", "pause"), core.CodeInvalidWaitValue},
		{"wait negative", testcase.Wait("-5", "pause"), core.CodeInvalidWaitValue},
		{"wait overflowing", testcase.Wait("10000000000000", "pause"), core.CodeInvalidWaitValue},
		{"unknown action", testcase.TestStep{Action: "drag", Selector: "name:A", Description: "drag"}, core.CodeUnknownActionType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.New(mock.Config{}).AddElement("name:Editor", &mock.Element{})
			x := NewStepExecutor(m, fastTiming())

			attempts, err := x.Execute(context.Background(), tt.step)
			if !core.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
			if attempts != 0 {
				t.Errorf("attempts = %d, want 0", attempts)
			}
			if len(m.Calls()) != 0 {
				t.Errorf("calls = %v, want none", m.Calls())
			}
		})
	}
}

func TestExecute_ActionTimeout(t *testing.T) {
	m := mock.New(mock.Config{})
	timing := fastTiming()
	timing.FindAttempts = 1000
	timing.FindAttemptDelay = 5 * time.Millisecond
	timing.ActionTimeout = 40 * time.Millisecond
	x := NewStepExecutor(m, timing)

	start := time.Now()
	attempts, err := x.Execute(context.Background(), testcase.Click("name:Ghost", "press ghost"))
	if !core.IsCode(err, core.CodeTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("a timeout must not be retried, attempts = %d", attempts)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("elapsed = %v, deadline not honored", elapsed)
	}
}

func TestExecute_PacingDelays(t *testing.T) {
	m := mock.New(mock.Config{}).AddElement("name:Seven", &mock.Element{})
	timing := fastTiming()
	timing.PreActionDelay = 40 * time.Millisecond
	timing.PostActionDelay = 20 * time.Millisecond
	x := NewStepExecutor(m, timing)

	start := time.Now()
	if _, err := x.Execute(context.Background(), testcase.Click("name:Seven", "press 7")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("elapsed = %v, want at least pre+post delay", elapsed)
	}
}
