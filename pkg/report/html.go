package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath string // Path to write the HTML file (default: <dir>/report-<timestamp>.html)
	Title      string // Report title (default: "Test Report")
}

// GenerateHTML renders rep into an HTML file under dir and returns its path.
func GenerateHTML(dir string, rep *Report, cfg HTMLConfig) (string, error) {
	if cfg.Title == "" {
		cfg.Title = "Test Report"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(dir, fmt.Sprintf("report-%s.html", rep.GeneratedAt.Format(timestampFormat)))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	html, err := renderHTML(buildHTMLData(rep, cfg))
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}
	return cfg.OutputPath, nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title       string
	GeneratedAt string
	Report      *Report
	Cases       []CaseHTMLData
	PassRate    string
}

// CaseHTMLData contains test case data formatted for HTML.
type CaseHTMLData struct {
	*core.TestResult
	StatusClass string
	DurationStr string
	Steps       []StepHTMLData
	NotRun      int
}

// StepHTMLData contains step data formatted for HTML.
type StepHTMLData struct {
	core.StepResult
	Number      int
	StatusClass string
	DurationStr string
	Value       string
}

var statusClass = map[core.Status]string{
	core.StatusPass:  "passed",
	core.StatusFail:  "failed",
	core.StatusError: "error",
}

func buildHTMLData(rep *Report, cfg HTMLConfig) HTMLData {
	cases := make([]CaseHTMLData, len(rep.Results))
	for i, r := range rep.Results {
		steps := make([]StepHTMLData, len(r.Steps))
		for j, s := range r.Steps {
			steps[j] = StepHTMLData{
				StepResult:  s,
				Number:      s.Index + 1,
				StatusClass: statusClass[s.Status],
				DurationStr: formatDuration(s.Duration),
				Value:       s.Step.ValueString(),
			}
		}
		notRun := len(r.TestCase.Steps) - len(r.Steps)
		if notRun < 0 {
			notRun = 0
		}
		cases[i] = CaseHTMLData{
			TestResult:  r,
			StatusClass: statusClass[r.Status],
			DurationStr: formatDuration(r.Duration),
			Steps:       steps,
			NotRun:      notRun,
		}
	}

	return HTMLData{
		Title:       cfg.Title,
		GeneratedAt: rep.GeneratedAt.Format("2006-01-02 15:04:05"),
		Report:      rep,
		Cases:       cases,
		PassRate:    fmt.Sprintf("%.0f%%", rep.Summary.PassRate),
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-primary: #000000;
            --text-muted: rgb(107, 114, 128);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --passed-bg: rgba(34, 197, 94, 0.1);
            --failed: #ef4444;
            --failed-bg: rgba(239, 68, 68, 0.08);
            --error: #eab308;
            --error-bg: rgba(234, 179, 8, 0.1);
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }
        .header { background: var(--bg-secondary); border-bottom: 1px solid var(--border-color); padding: 16px 24px; }
        .header-title-main { font-size: 18px; font-weight: 600; }
        .header-title-sub { margin-left: 12px; color: var(--text-muted); font-size: 13px; }
        .summary { display: flex; gap: 16px; margin-top: 12px; }
        .summary-item { padding: 8px 14px; border-radius: 6px; border: 1px solid var(--border-color); }
        .summary-item.passed { background: var(--passed-bg); }
        .summary-item.failed { background: var(--failed-bg); }
        .summary-item.error { background: var(--error-bg); }
        .summary-value { font-size: 20px; font-weight: 600; }
        .summary-label { font-size: 12px; color: var(--text-muted); }
        .content { padding: 24px; }
        .case { border: 1px solid var(--border-color); border-left-width: 4px; border-radius: 6px; margin-bottom: 16px; }
        .case.passed { border-left-color: var(--passed); }
        .case.failed { border-left-color: var(--failed); }
        .case.error { border-left-color: var(--error); }
        .case-header { display: flex; justify-content: space-between; padding: 12px 16px; background: var(--bg-secondary); }
        .case-name { font-weight: 600; }
        .case-meta { color: var(--text-muted); font-size: 13px; }
        .case-description { padding: 8px 16px; font-size: 14px; }
        .case-error { padding: 8px 16px; font-family: monospace; font-size: 13px; color: var(--failed); white-space: pre-wrap; }
        .badge { font-size: 12px; font-weight: 600; padding: 2px 8px; border-radius: 4px; }
        .badge.passed { color: var(--passed); background: var(--passed-bg); }
        .badge.failed { color: var(--failed); background: var(--failed-bg); }
        .badge.error { color: var(--error); background: var(--error-bg); }
        table { width: 100%; border-collapse: collapse; font-size: 13px; }
        th, td { text-align: left; padding: 6px 16px; border-top: 1px solid var(--border-color); vertical-align: top; }
        th { color: var(--text-muted); font-weight: 500; }
        td.mono { font-family: monospace; }
        tr.failed td { background: var(--failed-bg); }
        .not-run { padding: 6px 16px; color: var(--text-muted); font-size: 13px; }
        .expected { padding: 8px 16px; font-size: 13px; color: var(--text-muted); }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <span class="header-title-main">{{.Title}}</span>
            <span class="header-title-sub">{{.Report.Application}} · {{.GeneratedAt}}{{if .Report.RunID}} · run {{.Report.RunID}}{{end}}</span>
        </div>
        <div class="summary">
            <div class="summary-item"><div class="summary-value">{{.Report.Summary.Total}}</div><div class="summary-label">Total</div></div>
            <div class="summary-item passed"><div class="summary-value">{{.Report.Summary.Passed}}</div><div class="summary-label">Passed</div></div>
            <div class="summary-item failed"><div class="summary-value">{{.Report.Summary.Failed}}</div><div class="summary-label">Failed</div></div>
            <div class="summary-item error"><div class="summary-value">{{.Report.Summary.Errored}}</div><div class="summary-label">Errors</div></div>
            <div class="summary-item"><div class="summary-value">{{.PassRate}}</div><div class="summary-label">Pass rate</div></div>
        </div>
    </div>
    <div class="content">
        {{range .Cases}}
        <div class="case {{.StatusClass}}" data-status="{{.StatusClass}}">
            <div class="case-header">
                <div>
                    <span class="case-name">{{.TestCase.DisplayName}}</span>
                    {{if .TestCase.ID}}<span class="case-meta">({{.TestCase.ID}})</span>{{end}}
                </div>
                <div>
                    <span class="case-meta">{{.DurationStr}}</span>
                    <span class="badge {{.StatusClass}}">{{.Status}}</span>
                </div>
            </div>
            {{if .TestCase.Description}}<div class="case-description">{{.TestCase.Description}}</div>{{end}}
            {{if .Error}}<div class="case-error">{{.Error}}</div>{{end}}
            {{if .Steps}}
            <table>
                <tr><th>#</th><th>Action</th><th>Selector</th><th>Value</th><th>Description</th><th>Status</th><th>Duration</th><th>Error</th></tr>
                {{range .Steps}}
                <tr class="{{.StatusClass}}">
                    <td>{{.Number}}</td>
                    <td>{{.Step.Action}}</td>
                    <td class="mono">{{.Step.Selector}}</td>
                    <td class="mono">{{.Value}}</td>
                    <td>{{.Step.Description}}</td>
                    <td><span class="badge {{.StatusClass}}">{{.Status}}</span></td>
                    <td>{{.DurationStr}}</td>
                    <td class="mono">{{.Error}}</td>
                </tr>
                {{end}}
            </table>
            {{end}}
            {{if .NotRun}}<div class="not-run">{{.NotRun}} step(s) not run</div>{{end}}
            {{if .TestCase.ExpectedResults}}
            <div class="expected">Expected: {{range $i, $e := .TestCase.ExpectedResults}}{{if $i}}; {{end}}{{$e}}{{end}}</div>
            {{end}}
        </div>
        {{else}}
        <p>No test cases were executed.</p>
        {{end}}
    </div>
</body>
</html>
`
