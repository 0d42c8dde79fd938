package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
)

const (
	stepsSheet   = "Steps"
	summarySheet = "Summary"

	failBgColor  = "FFC7CE"
	errorBgColor = "FFEB9C"
	headerColor  = "E5E7EB"
)

var xlsxHeaders = []string{
	"Case ID", "Case Name", "Case Status", "Step", "Action", "Selector",
	"Value", "Description", "Step Status", "Attempts", "Duration (ms)", "Error",
}

var xlsxColumnWidths = []float64{12, 28, 12, 6, 10, 28, 18, 36, 12, 10, 14, 60}

// GenerateXLSX writes rep as a workbook with one row per executed step and a
// summary sheet. An empty outputPath means <dir>/report-<timestamp>.xlsx.
func GenerateXLSX(dir string, rep *Report, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = filepath.Join(dir, fmt.Sprintf("report-%s.xlsx", rep.GeneratedAt.Format(timestampFormat)))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), stepsSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeStepsSheet(f, rep); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return "", fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, rep); err != nil {
		return "", err
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return outputPath, nil
}

func writeStepsSheet(f *excelize.File, rep *Report) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{failBgColor}},
	})
	if err != nil {
		return fmt.Errorf("create fail style: %w", err)
	}
	errorStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{errorBgColor}},
	})
	if err != nil {
		return fmt.Errorf("create error style: %w", err)
	}

	for i, width := range xlsxColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(stepsSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := writeRow(f, stepsSheet, 1, toCells(xlsxHeaders)); err != nil {
		return err
	}
	if err := styleRow(f, stepsSheet, 1, len(xlsxHeaders), headerStyle); err != nil {
		return err
	}

	row := 2
	for _, r := range rep.Results {
		if len(r.Steps) == 0 {
			cells := []interface{}{r.TestCase.ID, r.TestCase.DisplayName(), string(r.Status),
				"", "", "", "", "", "", "", r.Duration.Milliseconds(), r.Error}
			if err := writeRow(f, stepsSheet, row, cells); err != nil {
				return err
			}
			if r.Status == core.StatusError {
				if err := styleRow(f, stepsSheet, row, len(cells), errorStyle); err != nil {
					return err
				}
			}
			row++
			continue
		}

		for _, s := range r.Steps {
			cells := []interface{}{r.TestCase.ID, r.TestCase.DisplayName(), string(r.Status),
				s.Index + 1, string(s.Step.Action), s.Step.Selector, s.Step.ValueString(),
				s.Step.Description, string(s.Status), s.Attempts, s.Duration.Milliseconds(), s.Error}
			if err := writeRow(f, stepsSheet, row, cells); err != nil {
				return err
			}
			if s.Status == core.StatusFail {
				if err := styleRow(f, stepsSheet, row, len(cells), failStyle); err != nil {
					return err
				}
			}
			row++
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rep *Report) error {
	rows := [][]interface{}{
		{"Application", rep.Application},
		{"Run ID", rep.RunID},
		{"Generated", rep.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total", rep.Summary.Total},
		{"Passed", rep.Summary.Passed},
		{"Failed", rep.Summary.Failed},
		{"Errors", rep.Summary.Errored},
		{"Pass rate", fmt.Sprintf("%.1f%%", rep.Summary.PassRate)},
	}
	for i, cells := range rows {
		if err := writeRow(f, summarySheet, i+1, cells); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 20)
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
