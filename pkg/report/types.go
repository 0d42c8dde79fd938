// Package report records test results and renders them as JSON, HTML and
// XLSX files.
//
// Layout of a report directory:
//   - report.json: run summary and every test result
//   - report-<timestamp>.html: human readable report
//   - report-<timestamp>.xlsx: one row per executed step
package report

import (
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// timestampFormat names generated files; it sorts lexically and is valid on
// every filesystem.
const timestampFormat = "2006-01-02T15-04-05"

// Report is the document written to report.json.
type Report struct {
	Version     string             `json:"version"`
	RunID       string             `json:"runId,omitempty"`
	Application string             `json:"application"`
	StartTime   time.Time          `json:"startTime"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Summary     Summary            `json:"summary"`
	Results     []*core.TestResult `json:"results"`
}

// Summary contains case counts.
type Summary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errored  int     `json:"errored"`
	PassRate float64 `json:"passRate"`
}

// Summarize counts results by status.
func Summarize(results []*core.TestResult) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		switch r.Status {
		case core.StatusPass:
			s.Passed++
		case core.StatusFail:
			s.Failed++
		case core.StatusError:
			s.Errored++
		}
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s
}

// FromSuite builds a report from a finished suite.
func FromSuite(suite *core.SuiteResult) *Report {
	return &Report{
		Version:     Version,
		RunID:       suite.RunID,
		Application: suite.Application,
		StartTime:   suite.StartTime,
		GeneratedAt: time.Now(),
		Summary:     Summarize(suite.Results),
		Results:     suite.Results,
	}
}
