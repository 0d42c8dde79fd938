package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/report"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// Slow step threshold
const slowThreshold = 5 * time.Second

func printBanner(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", color.New(color.Bold).Sprint("desktop-runner"), color.HiBlackString("%s", Version))
	fmt.Fprintln(w)
}

// progress prints live case and step lines.
type progress struct {
	w io.Writer
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

func (p *progress) caseStart(caseIdx, totalCases int, tc testcase.TestCase) {
	fmt.Fprintf(p.w, "\n  %s %s\n",
		color.CyanString("[%d/%d]", caseIdx+1, totalCases),
		color.New(color.Bold).Sprint(tc.DisplayName()))
	if tc.Description != "" {
		fmt.Fprintf(p.w, "  %s\n", color.HiBlackString("%s", tc.Description))
	}
	fmt.Fprintln(p.w, strings.Repeat("─", 60))
}

func (p *progress) stepComplete(idx int, sr core.StepResult) {
	desc := sr.Step.Describe()
	dur := formatDuration(sr.Duration)

	if sr.Status == core.StatusPass {
		symbol := color.GreenString("✓")
		if sr.Duration >= slowThreshold {
			symbol = color.YellowString("⚠")
			dur = color.YellowString("%s", dur)
		}
		fmt.Fprintf(p.w, "    %s %s (%s)\n", symbol, desc, dur)
		return
	}

	fmt.Fprintf(p.w, "    %s %s (%s)\n", color.RedString("✗"), desc, dur)
	if sr.Error != "" {
		fmt.Fprintf(p.w, "      %s %s\n", color.HiBlackString("╰─"), sr.Error)
	}
}

func (p *progress) caseEnd(result *core.TestResult) {
	name := result.TestCase.DisplayName()
	dur := color.HiBlackString("%s", formatDuration(result.Duration))

	switch result.Status {
	case core.StatusPass:
		fmt.Fprintf(p.w, "%s %s %s\n", color.GreenString("✓"), name, dur)
	case core.StatusFail:
		fmt.Fprintf(p.w, "%s %s %s\n", color.RedString("✗"), name, dur)
	default:
		fmt.Fprintf(p.w, "%s %s %s\n", color.YellowString("!"), name, dur)
	}

	if notRun := len(result.TestCase.Steps) - len(result.Steps); notRun > 0 && result.Status != core.StatusPass {
		fmt.Fprintf(p.w, "  %s\n", color.HiBlackString("%d step(s) not run", notRun))
	}
	if result.Error != "" {
		fmt.Fprintf(p.w, "  %s %s\n", color.HiBlackString("╰─"), result.Error)
	}
}

func statusLabel(s core.Status) string {
	switch s {
	case core.StatusPass:
		return color.GreenString("✓ PASS")
	case core.StatusFail:
		return color.RedString("✗ FAIL")
	}
	return color.YellowString("! ERROR")
}

// printSummary renders one table row per case and a totals line.
func printSummary(w io.Writer, suite *core.SuiteResult) {
	fmt.Fprintln(w)

	if len(suite.Results) == 0 {
		fmt.Fprintf(w, "  %s\n\n", color.YellowString("No test cases were executed."))
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test Case", "Status", "Steps", "Passed", "Duration"})
	table.SetAutoWrapText(false)

	totalSteps, passedSteps := 0, 0
	for _, r := range suite.Results {
		name := r.TestCase.DisplayName()
		if len(name) > 42 {
			name = name[:39] + "..."
		}
		steps := len(r.TestCase.Steps)
		passed := r.PassedSteps()
		totalSteps += steps
		passedSteps += passed

		table.Append([]string{
			name,
			statusLabel(r.Status),
			strconv.Itoa(steps),
			strconv.Itoa(passed),
			formatDuration(r.Duration),
		})
	}

	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d/%d", suite.Passed, suite.Total),
		strconv.Itoa(totalSteps),
		strconv.Itoa(passedSteps),
		formatDuration(suite.Duration),
	})
	table.Render()

	fmt.Fprintln(w)
	parts := []string{color.GreenString("%d passed", suite.Passed)}
	if suite.Failed > 0 {
		parts = append(parts, color.RedString("%d failed", suite.Failed))
	}
	if suite.Errored > 0 {
		parts = append(parts, color.YellowString("%d errors", suite.Errored))
	}
	fmt.Fprintf(w, "  %s (%d total)\n\n", strings.Join(parts, ", "), suite.Total)
}

// writeReports generates every report format; failures only warn.
func writeReports(w io.Writer, dir string, rep *report.Report) {
	fmt.Fprintf(w, "  %s Generating reports...\n\n", color.CyanString("⏳"))

	var lines []string
	if path, err := report.WriteJSON(dir, rep); err != nil {
		fmt.Fprintf(w, "  %s Warning: failed to write JSON report: %v\n", color.YellowString("⚠"), err)
	} else {
		lines = append(lines, fmt.Sprintf("    JSON:   %s", path))
	}
	if path, err := report.GenerateHTML(dir, rep, report.HTMLConfig{Title: rep.Application + " Test Report"}); err != nil {
		fmt.Fprintf(w, "  %s Warning: failed to generate HTML report: %v\n", color.YellowString("⚠"), err)
	} else {
		lines = append(lines, fmt.Sprintf("    HTML:   %s", path))
	}
	if path, err := report.GenerateXLSX(dir, rep, ""); err != nil {
		fmt.Fprintf(w, "  %s Warning: failed to generate XLSX report: %v\n", color.YellowString("⚠"), err)
	} else {
		lines = append(lines, fmt.Sprintf("    XLSX:   %s", path))
	}

	if len(lines) > 0 {
		fmt.Fprintln(w, "  Reports:")
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
		fmt.Fprintln(w)
	}
}

func printValidationErrors(w io.Writer, errs []error) {
	fmt.Fprintf(w, "%s\n", color.RedString("Validation errors:"))
	for _, err := range errs {
		fmt.Fprintf(w, "  - %v\n", err)
	}
	fmt.Fprintf(w, "\n  validation failed with %d error(s)\n", len(errs))
}

// formatDuration shows milliseconds below one second, seconds otherwise.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
