package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/desktop-runner/pkg/automation/desktopuse"
	"github.com/devicelab-dev/desktop-runner/pkg/executor"
	"github.com/devicelab-dev/desktop-runner/pkg/generator"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
	"github.com/devicelab-dev/desktop-runner/pkg/report"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
	"github.com/devicelab-dev/desktop-runner/pkg/validator"
)

// newModel is swapped in tests.
var newModel = generator.NewModel

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Generate test cases with an LLM and execute them",
	ArgsUsage: "[application]",
	Description: `Generate test cases for a desktop application, save them to the cases
directory and execute them against the automation server.

The application is a friendly name (calculator, notepad, paint, wordpad,
browser, whatsapp), an executable name, or a path to an .exe.

Examples:
  desktop-runner run calculator
  desktop-runner run --count 5 --case-timeout 2m notepad
  desktop-runner run --provider ollama --model llama3 "C:\Tools\app.exe"`,
	Flags:  joinFlags(generationFlags, executionFlags),
	Action: runAction,
}

var execCommand = &cli.Command{
	Name:      "exec",
	Usage:     "Execute previously generated test cases",
	ArgsUsage: "<cases-file-or-folder>",
	Description: `Execute test cases from a JSON or YAML file (or every case file in a
folder) without calling an LLM.

Examples:
  desktop-runner exec test-cases/calculator-test-cases.json
  desktop-runner exec --output ./my-reports --flatten test-cases/`,
	Flags:  executionFlags,
	Action: execAction,
}

var generateCommand = &cli.Command{
	Name:      "generate",
	Usage:     "Generate and save test cases without executing them",
	ArgsUsage: "[application]",
	Flags:     generationFlags,
	Action:    generateAction,
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check test case files for structural errors",
	ArgsUsage: "<cases-file-or-folder>",
	Action:    validateAction,
}

func runAction(c *cli.Context) error {
	s, err := openSession(c, true)
	if err != nil {
		return err
	}
	defer s.close()

	app, err := s.application(c)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(c)
	defer stop()

	printBanner(s.out)
	cases, err := s.generate(ctx, app)
	if err != nil {
		logger.Error("Test generation failed: %v", err)
		return err
	}
	if len(cases) == 0 {
		fmt.Fprintf(s.out, "  %s No test cases generated. Exiting.\n", color.RedString("✗"))
		return cli.Exit("", 1)
	}

	return s.execute(ctx, app, cases)
}

func execAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("a test case file or folder is required")
	}

	s, err := openSession(c, true)
	if err != nil {
		return err
	}
	defer s.close()

	result := validator.New().Validate(c.Args().First())
	if !result.IsValid() {
		printValidationErrors(s.out, result.Errors)
		return cli.Exit("", 1)
	}
	if len(result.Cases) == 0 {
		fmt.Fprintf(s.out, "  %s No test cases found. Exiting.\n", color.RedString("✗"))
		return cli.Exit("", 1)
	}
	logger.Info("Loaded %d test case(s) from %d file(s)", len(result.Cases), len(result.Files))

	app := s.cfg.Application
	if app == "" {
		app = result.Cases[0].Application
	}

	ctx, stop := signalContext(c)
	defer stop()

	printBanner(s.out)
	return s.execute(ctx, app, result.Cases)
}

func generateAction(c *cli.Context) error {
	s, err := openSession(c, false)
	if err != nil {
		return err
	}
	defer s.close()

	app, err := s.application(c)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(c)
	defer stop()

	cases, err := s.generate(ctx, app)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		fmt.Fprintf(s.out, "  %s No test cases generated.\n", color.RedString("✗"))
		return cli.Exit("", 1)
	}
	return nil
}

func validateAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("a test case file or folder is required")
	}
	w := c.App.Writer

	v := validator.New()
	var errs []error
	cases := 0
	for _, path := range c.Args().Slice() {
		result := v.Validate(path)
		errs = append(errs, result.Errors...)
		cases += len(result.Cases)
		for _, f := range result.Files {
			fmt.Fprintf(w, "  %s %s\n", color.GreenString("✓"), f)
		}
	}

	if len(errs) > 0 {
		printValidationErrors(w, errs)
		return cli.Exit("", 1)
	}
	fmt.Fprintf(w, "\n  %d test case(s) valid\n", cases)
	return nil
}

// signalContext cancels on Ctrl+C or SIGTERM so the runner stops between
// cases and still writes reports for what finished.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// generate asks the configured model for test cases and saves them.
func (s *session) generate(ctx context.Context, app string) ([]testcase.TestCase, error) {
	gcfg := s.cfg.Generator
	apiKey := s.cfg.APIKey()

	model, err := newModel(ctx, generator.ModelConfig{
		Provider: gcfg.Provider,
		Model:    gcfg.Model,
		APIKey:   apiKey,
		BaseURL:  gcfg.BaseURL,
	})
	if err != nil {
		if gcfg.APIKeyEnv != "" && apiKey == "" {
			return nil, fmt.Errorf("%s is not set: %w", gcfg.APIKeyEnv, err)
		}
		return nil, fmt.Errorf("failed to create %s model: %w", gcfg.Provider, err)
	}

	opts := []generator.Option{}
	if gcfg.Temperature != nil {
		opts = append(opts, generator.WithTemperature(*gcfg.Temperature))
	}
	gen, err := generator.New(model, opts...)
	if err != nil {
		return nil, err
	}

	description := s.cfg.Description
	if description == "" {
		description = generator.Description(app, s.cfg.AppDescriptions)
	}

	fmt.Fprintf(s.out, "  %s Generating %d test case(s) for %s...\n", color.CyanString("⏳"), s.cfg.Count, app)
	cases, err := gen.Generate(ctx, description, app, s.cfg.Count)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "  %s Generated %d test case(s)\n", color.GreenString("✓"), len(cases))

	if len(cases) > 0 {
		path := filepath.Join(s.cfg.CasesDir, caseFileName(app))
		if err := testcase.SaveFile(path, cases); err != nil {
			fmt.Fprintf(s.out, "  %s Warning: failed to save test cases: %v\n", color.YellowString("⚠"), err)
		} else {
			fmt.Fprintf(s.out, "  %s Saved to %s\n", color.GreenString("✓"), path)
			logger.Info("Saved %d test case(s) to %s", len(cases), path)
		}
	}
	return cases, nil
}

// execute runs cases against the automation server and writes reports.
func (s *session) execute(ctx context.Context, app string, cases []testcase.TestCase) error {
	client := desktopuse.New(s.cfg.ServerURL)
	collector := report.NewCollector(app)
	p := newProgress(s.out)

	runner := executor.New(client, executor.RunnerConfig{
		Timing:         s.cfg.ExecutorTiming(),
		Reporter:       collector,
		Application:    app,
		OnCaseStart:    p.caseStart,
		OnStepComplete: p.stepComplete,
		OnCaseEnd:      p.caseEnd,
	})

	logger.Info("Starting execution of %d test case(s)", len(cases))
	suite, runErr := runner.Run(ctx, cases)
	collector.SetRunID(suite.RunID)

	printSummary(s.out, suite)
	writeReports(s.out, s.outputDir, collector.Report())

	if runErr != nil {
		logger.Warn("Run interrupted: %v", runErr)
		return cli.Exit(fmt.Sprintf("run interrupted: %v", runErr), 1)
	}
	if !suite.AllPassed() {
		return cli.Exit("", 1)
	}
	return nil
}
