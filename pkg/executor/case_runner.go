package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/apps"
	"github.com/devicelab-dev/desktop-runner/pkg/automation"
	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// WindowSelector is probed once after launch to confirm a window appeared.
const WindowSelector = "role:window"

// CaseRunner executes a single test case.
type CaseRunner struct {
	client   automation.Client
	timing   Timing
	resolver apps.Resolver
	steps    *StepExecutor

	// OnStepComplete is called after every executed step.
	OnStepComplete func(idx int, sr core.StepResult)
}

// NewCaseRunner creates a case runner over client.
func NewCaseRunner(client automation.Client, timing Timing, resolver apps.Resolver) *CaseRunner {
	timing = timing.normalized()
	return &CaseRunner{
		client:   client,
		timing:   timing,
		resolver: resolver,
		steps:    NewStepExecutor(client, timing),
	}
}

// Run launches the case's application and executes its steps in order,
// stopping at the first failing step. The result is always finalized.
func (cr *CaseRunner) Run(ctx context.Context, tc testcase.TestCase) *core.TestResult {
	result := core.NewTestResult(tc, time.Now())
	result.State = core.CaseRunning
	defer func() {
		result.Finish(time.Now())
		logger.Info("Test case %q finished with status: %s in %v", tc.DisplayName(), result.Status, result.Duration)
	}()

	if cr.timing.CaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cr.timing.CaseTimeout)
		defer cancel()
	}

	if err := cr.launch(ctx, tc.Application); err != nil {
		logger.Error("Critical test execution error for %q: %v", tc.DisplayName(), err)
		result.Abort(fmt.Sprintf("Critical test execution error: %v", err))
		return result
	}

	for i, step := range tc.Steps {
		sr := cr.runStep(ctx, i, step)
		result.AddStep(sr)
		if cr.OnStepComplete != nil {
			cr.OnStepComplete(i, sr)
		}

		if sr.Status == core.StatusFail {
			logger.Error("Step FAILED: %s. Error: %s", step.Describe(), sr.Error)
			result.Error = fmt.Sprintf("Test case failed at step: \"%s\". Error: %s", step.Describe(), sr.Error)
			break
		}
		logger.Info("Step PASSED: %s (took %v)", step.Describe(), sr.Duration)
	}

	return result
}

// launch resolves and opens the application, waits for it to settle and
// probes for a window. The probe is advisory.
func (cr *CaseRunner) launch(ctx context.Context, application string) error {
	exe, err := cr.resolver.Resolve(application)
	if err != nil {
		return err
	}

	logger.Info("Launching application with executable: %s", exe)
	if err := cr.client.LaunchApplication(ctx, exe); err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx, "launch", err)
		}
		return core.ErrLaunch.
			WithMessage(fmt.Sprintf("failed to launch %s", exe)).
			WithDetails(map[string]interface{}{"application": application, "executable": exe}).
			WithCause(err)
	}
	logger.Info("Successfully launched %s", exe)

	logger.Debug("Waiting %v for app to initialize", cr.timing.LaunchWait)
	if err := sleep(ctx, cr.timing.LaunchWait); err != nil {
		return interrupted(ctx, "launch wait", err)
	}

	h, err := cr.client.Locate(ctx, WindowSelector)
	if err == nil {
		_, err = h.Bounds(ctx)
	}
	if err != nil {
		logger.Warn("Could not confirm main window presence after launch, proceeding: %v", err)
	} else {
		logger.Debug("Application window present")
	}
	return nil
}

func (cr *CaseRunner) runStep(ctx context.Context, idx int, step testcase.TestStep) core.StepResult {
	start := time.Now()
	attempts, err := cr.steps.Execute(ctx, step)

	sr := core.StepResult{
		Step:      step,
		Index:     idx,
		Status:    core.StatusPass,
		StartTime: start,
		Duration:  time.Since(start),
		Attempts:  attempts,
	}
	if err != nil {
		sr.Status = core.StatusFail
		sr.Error = err.Error()
		if ee, ok := core.AsExecutionError(err); ok {
			sr.Category = ee.Category
			sr.Code = ee.Code
		}
	}
	return sr
}
