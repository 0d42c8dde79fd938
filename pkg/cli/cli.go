// Package cli provides the command-line interface for desktop-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "server-url",
		Usage:   "Desktop automation server URL",
		Value:   "http://127.0.0.1:9375",
		EnvVars: []string{"TERMINATOR_SERVER_URL"},
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to workspace config.yaml (default: ./config.yaml, then $DESKTOP_RUNNER_HOME)",
		EnvVars: []string{"DESKTOP_RUNNER_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "env-file",
		Usage: "Load environment variables from this file (default: ./.env if present)",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"DESKTOP_RUNNER_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write the execution log here instead of <output>/desktop-runner.log",
	},
	&cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable ANSI colors (NO_COLOR is honored too)",
	},
}

// executionFlags tune how cases are executed.
var executionFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "output",
		Usage: "Output directory for reports (default: ./reports)",
	},
	&cli.BoolFlag{
		Name:  "flatten",
		Usage: "Don't create timestamp subfolder (requires --output)",
	},
	&cli.IntFlag{
		Name:  "retries",
		Usage: "Attempts per click/type/verify step",
	},
	&cli.DurationFlag{
		Name:  "action-timeout",
		Usage: "Deadline for a single click/type/verify step (0 = none)",
	},
	&cli.DurationFlag{
		Name:  "case-timeout",
		Usage: "Deadline for a whole test case including launch (0 = none)",
	},
}

// generationFlags select the model and what to ask it for.
var generationFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "count",
		Aliases: []string{"n"},
		Usage:   "Number of test cases to generate",
	},
	&cli.StringFlag{
		Name:  "description",
		Usage: "Application description used in the prompt (default: built-in or \"<app> desktop application\")",
	},
	&cli.StringFlag{
		Name:    "provider",
		Usage:   "LLM provider (gemini, openai, ollama)",
		EnvVars: []string{"DESKTOP_RUNNER_PROVIDER"},
	},
	&cli.StringFlag{
		Name:    "model",
		Usage:   "LLM model name",
		EnvVars: []string{"DESKTOP_RUNNER_MODEL"},
	},
	&cli.StringFlag{
		Name:  "cases-dir",
		Usage: "Directory generated test cases are saved to (default: ./test-cases)",
	},
}

// newApp builds the CLI application.
func newApp() *cli.App {
	return &cli.App{
		Name:    "desktop-runner",
		Usage:   "AI-assisted UI test runner for desktop applications",
		Version: Version,
		Description: `Desktop Runner generates UI test cases for a desktop application with an
LLM, executes them through a desktop automation server and writes JSON, HTML
and XLSX reports.

Examples:
  desktop-runner run calculator
  desktop-runner run --count 5 notepad
  desktop-runner generate --provider openai --model gpt-4o-mini paint
  desktop-runner exec test-cases/calculator-test-cases.json
  desktop-runner validate test-cases/`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			execCommand,
			generateCommand,
			validateCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
