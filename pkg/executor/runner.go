// Package executor runs desktop UI test cases against an automation client.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/desktop-runner/pkg/apps"
	"github.com/devicelab-dev/desktop-runner/pkg/automation"
	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// Reporter receives every finished test result.
type Reporter interface {
	AddResult(result *core.TestResult)
}

// RunnerConfig configures the test runner.
type RunnerConfig struct {
	Timing      Timing
	Resolver    apps.Resolver
	Reporter    Reporter // Optional
	Application string   // Reported application name (defaults to the first case's)

	// Live progress callbacks
	OnCaseStart    func(caseIdx, totalCases int, tc testcase.TestCase)
	OnStepComplete func(idx int, sr core.StepResult)
	OnCaseEnd      func(result *core.TestResult)
}

// Runner orchestrates test case execution.
type Runner struct {
	config RunnerConfig
	client automation.Client
}

// New creates a new Runner.
func New(client automation.Client, cfg RunnerConfig) *Runner {
	return &Runner{
		config: cfg,
		client: client,
	}
}

// Run executes cases strictly in sequence. A failing or erroring case never
// stops the suite; only ctx cancellation does, in which case the results
// gathered so far are returned along with the context error.
func (r *Runner) Run(ctx context.Context, cases []testcase.TestCase) (*core.SuiteResult, error) {
	start := time.Now()
	suite := &core.SuiteResult{
		Application: r.application(cases),
		RunID:       uuid.NewString(),
		StartTime:   start,
		Results:     make([]*core.TestResult, 0, len(cases)),
	}

	if len(cases) == 0 {
		logger.Info("No test cases to run")
		suite.ComputeSummary()
		return suite, nil
	}

	cr := NewCaseRunner(r.client, r.config.Timing, r.config.Resolver)
	cr.OnStepComplete = r.config.OnStepComplete

	var runErr error
	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run cancelled before %q: %v", tc.DisplayName(), err)
			runErr = err
			break
		}

		logger.Info("Executing test case %d/%d: %s", i+1, len(cases), tc.DisplayName())
		if r.config.OnCaseStart != nil {
			r.config.OnCaseStart(i, len(cases), tc)
		}

		result := cr.Run(ctx, tc)
		suite.Results = append(suite.Results, result)
		if r.config.Reporter != nil {
			r.config.Reporter.AddResult(result)
		}

		if r.config.OnCaseEnd != nil {
			r.config.OnCaseEnd(result)
		}
	}

	suite.Duration = time.Since(start)
	suite.ComputeSummary()
	logger.Info("Run %s complete: %d total, %d passed, %d failed, %d errored",
		suite.RunID, suite.Total, suite.Passed, suite.Failed, suite.Errored)
	return suite, runErr
}

func (r *Runner) application(cases []testcase.TestCase) string {
	if r.config.Application != "" {
		return r.config.Application
	}
	if len(cases) > 0 {
		return cases[0].Application
	}
	return ""
}
