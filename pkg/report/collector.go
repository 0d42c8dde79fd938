package report

import (
	"sync"
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
)

// Collector accumulates test results as they finish.
// It is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	application string
	runID       string
	start       time.Time
	results     []*core.TestResult
}

// NewCollector creates a collector for a run against application.
func NewCollector(application string) *Collector {
	return &Collector{
		application: application,
		start:       time.Now(),
	}
}

// SetRunID tags the collected results with a run identifier.
func (c *Collector) SetRunID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runID = id
}

// AddResult records a finished test result.
func (c *Collector) AddResult(result *core.TestResult) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns the recorded results in arrival order.
func (c *Collector) Results() []*core.TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*core.TestResult, len(c.results))
	copy(out, c.results)
	return out
}

// Report snapshots the collected results.
func (c *Collector) Report() *Report {
	results := c.Results()

	c.mu.Lock()
	defer c.mu.Unlock()
	return &Report{
		Version:     Version,
		RunID:       c.runID,
		Application: c.application,
		StartTime:   c.start,
		GeneratedAt: time.Now(),
		Summary:     Summarize(results),
		Results:     results,
	}
}
