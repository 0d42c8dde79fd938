package report

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

func sampleResults() []*core.TestResult {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pass := core.NewTestResult(testcase.TestCase{
		ID: "TC-1", Name: "Press seven", Application: "calculator",
		Steps: []testcase.TestStep{testcase.Click("name:Seven", "press 7")},
	}, start)
	pass.AddStep(core.StepResult{Step: testcase.Click("name:Seven", "press 7"), Status: core.StatusPass, Attempts: 1, Duration: 120 * time.Millisecond})
	pass.Finish(start.Add(2 * time.Second))

	failSteps := []testcase.TestStep{
		testcase.Click("name:Seven", "press 7"),
		testcase.Verify("name:Display", "42", "display <shows> 42"),
		testcase.Click("name:Clear", "clear"),
	}
	fail := core.NewTestResult(testcase.TestCase{
		ID: "TC-2", Name: "Wrong answer", Application: "calculator", Steps: failSteps,
		ExpectedResults: []string{"Display shows 42"},
	}, start)
	fail.AddStep(core.StepResult{Step: failSteps[0], Index: 0, Status: core.StatusPass, Attempts: 1})
	fail.AddStep(core.StepResult{Step: failSteps[1], Index: 1, Status: core.StatusFail, Code: core.CodeVerificationMismatch,
		Error: `Verification failed. Expected text containing "42" but got "7"`, Attempts: 1})
	fail.Error = `Test case failed at step: "display <shows> 42". Error: mismatch`
	fail.Finish(start.Add(3 * time.Second))

	errored := core.NewTestResult(testcase.TestCase{ID: "TC-3", Name: "No app", Application: "C:\\missing.exe"}, start)
	errored.Abort("Critical test execution error: Provided executable path not found: C:\\missing.exe")
	errored.Finish(start.Add(10 * time.Millisecond))

	return []*core.TestResult{pass, fail, errored}
}

func sampleReport() *Report {
	results := sampleResults()
	return &Report{
		Version:     Version,
		RunID:       "run-1",
		Application: "calculator",
		StartTime:   results[0].StartTime,
		GeneratedAt: time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC),
		Summary:     Summarize(results),
		Results:     results,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())
	if s.Total != 3 || s.Passed != 1 || s.Failed != 1 || s.Errored != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.PassRate < 33.3 || s.PassRate > 33.4 {
		t.Errorf("PassRate = %v", s.PassRate)
	}
	if empty := Summarize(nil); empty.PassRate != 0 || empty.Total != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestFromSuite(t *testing.T) {
	suite := &core.SuiteResult{Application: "calculator", RunID: "abc", Results: sampleResults()}
	rep := FromSuite(suite)
	if rep.RunID != "abc" || rep.Application != "calculator" || rep.Summary.Total != 3 {
		t.Errorf("report = %+v", rep)
	}
}

func TestCollector_ConcurrentAdd(t *testing.T) {
	c := NewCollector("calculator")
	c.SetRunID("run-42")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.AddResult(sampleResults()[0])
		}()
	}
	wg.Wait()
	c.AddResult(nil)

	rep := c.Report()
	if rep.Summary.Total != 50 || rep.Summary.Passed != 50 {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if rep.RunID != "run-42" || rep.Application != "calculator" {
		t.Errorf("report identity = %q %q", rep.RunID, rep.Application)
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	rep := sampleReport()

	path, err := WriteJSON(dir, rep)
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if filepath.Base(path) != IndexFile {
		t.Errorf("path = %s", path)
	}

	got, err := ReadJSON(dir)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Summary != rep.Summary {
		t.Errorf("summary = %+v, want %+v", got.Summary, rep.Summary)
	}
	if len(got.Results) != 3 {
		t.Fatalf("results = %d", len(got.Results))
	}
	if got.Results[1].Steps[1].Code != core.CodeVerificationMismatch {
		t.Errorf("step code = %q", got.Results[1].Steps[1].Code)
	}
	if got.Results[2].Status != core.StatusError {
		t.Errorf("status = %s", got.Results[2].Status)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestReadJSON_Missing(t *testing.T) {
	if _, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error")
	}
}

func TestGenerateHTML(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateHTML(dir, sampleReport(), HTMLConfig{})
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	if filepath.Base(path) != "report-2026-03-01T10-01-00.html" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{
		"<title>Test Report</title>",
		"Press seven",
		`class="case failed"`,
		`class="case error"`,
		"display &lt;shows&gt; 42",
		"1 step(s) not run",
		"Display shows 42",
		"Provided executable path not found",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(html, "display <shows> 42") {
		t.Error("step description was not escaped")
	}
}

func TestGenerateHTML_Empty(t *testing.T) {
	rep := &Report{GeneratedAt: time.Now()}
	path, err := GenerateHTML(t.TempDir(), rep, HTMLConfig{Title: "Empty run"})
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "No test cases were executed.") {
		t.Error("expected empty-state message")
	}
}

func TestGenerateXLSX(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateXLSX(dir, sampleReport(), "")
	if err != nil {
		t.Fatalf("GenerateXLSX() error = %v", err)
	}
	if filepath.Ext(path) != ".xlsx" {
		t.Errorf("path = %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(stepsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// header + 1 step + 2 steps + 1 row for the errored case
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if rows[0][0] != "Case ID" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[3][4] != "verify" || rows[3][8] != "FAIL" {
		t.Errorf("failing step row = %v", rows[3])
	}
	if rows[4][2] != "ERROR" {
		t.Errorf("errored case row = %v", rows[4])
	}

	total, err := f.GetCellValue(summarySheet, "B4")
	if err != nil {
		t.Fatal(err)
	}
	if total != "3" {
		t.Errorf("summary total = %q", total)
	}
}
