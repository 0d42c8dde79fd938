package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/devicelab-dev/desktop-runner/pkg/automation"
	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// StepExecutor performs single steps against the automation client.
type StepExecutor struct {
	timing  Timing
	locator *Locator
}

// NewStepExecutor creates a step executor over client.
func NewStepExecutor(client automation.Client, timing Timing) *StepExecutor {
	timing = timing.normalized()
	return &StepExecutor{
		timing:  timing,
		locator: NewLocator(client, timing),
	}
}

// attemptFunc runs one attempt of an action against a located element.
type attemptFunc func(ctx context.Context, h automation.Handle) error

// Execute validates and runs step, returning the number of outer attempts
// used. Invalid steps fail without touching the client.
func (x *StepExecutor) Execute(ctx context.Context, step testcase.TestStep) (int, error) {
	logger.Info("Executing step: %s (action: %s)", step.Describe(), step.Action)

	switch step.Action {
	case testcase.ActionClick, testcase.ActionType, testcase.ActionVerify:
		if missing := step.MissingFields(); len(missing) > 0 {
			return 0, core.ErrMissingField.
				WithMessage(fmt.Sprintf("Missing %s for %s action: %s", strings.Join(missing, " and "), step.Action, step.Describe())).
				WithDetails(map[string]interface{}{"fields": missing})
		}
		if x.timing.ActionTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, x.timing.ActionTimeout)
			defer cancel()
		}
		return x.retry(ctx, step, x.attemptFor(step))

	case testcase.ActionWait:
		d, err := step.WaitDuration()
		if err != nil {
			return 0, core.ErrInvalidWaitValue.
				WithMessage(fmt.Sprintf("Invalid wait time value: %s", step.ValueString())).
				WithCause(err)
		}
		logger.Info("Explicit wait for %v", d)
		if err := sleep(ctx, d); err != nil {
			return 1, interrupted(ctx, "wait", err)
		}
		return 1, nil

	default:
		return 0, core.ErrUnknownActionType.
			WithMessage(fmt.Sprintf("Unknown or unhandled step action type: '%s' in step: %s", step.Action, step.Description)).
			WithDetails(map[string]interface{}{"action": string(step.Action)})
	}
}

func (x *StepExecutor) attemptFor(step testcase.TestStep) attemptFunc {
	switch step.Action {
	case testcase.ActionType:
		return x.typeText(step)
	case testcase.ActionVerify:
		return x.verify(step)
	default:
		return x.click(step)
	}
}

// retry runs attempt up to ActionRetries times. Click and type wait
// RetryCooldown between failed attempts; verify retries immediately.
// Each attempt re-locates the element.
func (x *StepExecutor) retry(ctx context.Context, step testcase.TestStep, attempt attemptFunc) (int, error) {
	cooldown := x.timing.RetryCooldown
	if step.Action == testcase.ActionVerify {
		cooldown = 0
	}

	attempts := 0
	op := func() error {
		attempts++
		if attempts > 1 {
			logger.Info("Retrying %s on %q (attempt %d/%d)", step.Action, step.Selector, attempts, x.timing.ActionRetries)
		}
		h, err := x.locator.Locate(ctx, step.Selector)
		if err == nil {
			err = attempt(ctx, h)
		}
		if err == nil {
			return nil
		}
		if core.IsPermanent(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cooldown), uint64(x.timing.ActionRetries-1)),
		ctx,
	)
	err := backoff.RetryNotify(op, b, func(err error, next time.Duration) {
		logger.Warn("Attempt %d to %s %q failed: %v. Cooling down %v", attempts, step.Action, step.Selector, err, next)
	})
	if err == nil {
		return attempts, nil
	}

	if ctx.Err() != nil && !core.IsCode(err, core.CodeTimeout) {
		err = interrupted(ctx, string(step.Action), err)
	}
	ee, ok := core.AsExecutionError(err)
	if !ok {
		ee = core.ErrAction.WithCause(err)
	}
	logger.Error("Failed to %s %q after %d attempt(s): %v", step.Action, step.Selector, attempts, err)
	return attempts, ee.
		WithMessage(fmt.Sprintf("%s on %q failed after %d attempt(s)", step.Action, step.Selector, attempts)).
		WithDetails(map[string]interface{}{
			"action":   string(step.Action),
			"selector": step.Selector,
			"attempts": attempts,
		}).
		WithCause(err)
}

func (x *StepExecutor) click(step testcase.TestStep) attemptFunc {
	return func(ctx context.Context, h automation.Handle) error {
		if err := sleep(ctx, x.timing.PreActionDelay); err != nil {
			return err
		}
		if err := h.Click(ctx); err != nil {
			return core.ErrAction.WithMessage(fmt.Sprintf("click on %q failed", step.Selector)).WithCause(err)
		}
		logger.Info("Clicked %q", step.Selector)
		return sleep(ctx, x.timing.PostActionDelay)
	}
}

func (x *StepExecutor) typeText(step testcase.TestStep) attemptFunc {
	text := step.ValueString()
	return func(ctx context.Context, h automation.Handle) error {
		if err := sleep(ctx, x.timing.PreActionDelay); err != nil {
			return err
		}
		for i, r := range []rune(text) {
			if err := h.TypeUnit(ctx, string(r)); err != nil {
				return core.ErrAction.
					WithMessage(fmt.Sprintf("typing into %q failed at character %d", step.Selector, i)).
					WithCause(err)
			}
			if err := sleep(ctx, x.timing.KeystrokeDelay); err != nil {
				return err
			}
		}
		logger.Info("Typed %q into %q", text, step.Selector)
		return sleep(ctx, x.timing.PostActionDelay)
	}
}

func (x *StepExecutor) verify(step testcase.TestStep) attemptFunc {
	expected := step.ValueString()
	return func(ctx context.Context, h automation.Handle) error {
		if err := sleep(ctx, x.timing.PreActionDelay/2); err != nil {
			return err
		}
		actual, err := h.Text(ctx)
		if err != nil {
			return core.ErrAction.WithMessage(fmt.Sprintf("reading text from %q failed", step.Selector)).WithCause(err)
		}
		if !strings.Contains(actual, expected) {
			return core.ErrVerificationMismatch.
				WithMessage(fmt.Sprintf("Verification failed for %q. Expected text containing %q but got %q", step.Describe(), expected, actual)).
				WithDetails(map[string]interface{}{"expected": expected, "actual": actual})
		}
		logger.Info("Verification passed: text includes %q", expected)
		return nil
	}
}
