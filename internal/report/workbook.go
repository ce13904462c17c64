package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

// Sheet names of the generated workbook, in order.
const (
	SheetSummary    = "Summary"
	SheetCategories = "Categories"
	SheetBenchmarks = "Benchmarks"
)

// Workbook renders r and its benchmark comparisons as an XLSX document.
func Workbook(r assessment.Result, comparisons []assessment.Comparison) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetCategories); err != nil {
		return nil, fmt.Errorf("create categories sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetBenchmarks); err != nil {
		return nil, fmt.Errorf("create benchmarks sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return nil, fmt.Errorf("create percent style: %w", err)
	}

	w := &sheetWriter{f: f, header: header, percent: percent}
	w.summary(r)
	w.categories(r)
	w.benchmarks(comparisons)
	if w.err != nil {
		return nil, w.err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// sheetWriter keeps the first error so rows can be written without checking
// every cell.
type sheetWriter struct {
	f       *excelize.File
	header  int
	percent int
	err     error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	for i, v := range values {
		if w.err != nil {
			return
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			w.err = fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
}

func (w *sheetWriter) style(sheet, from, to string, style int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellStyle(sheet, from, to, style); err != nil {
		w.err = fmt.Errorf("style %s!%s:%s: %w", sheet, from, to, err)
	}
}

func (w *sheetWriter) width(sheet, from, to string, width float64) {
	if w.err != nil {
		return
	}
	if err := w.f.SetColWidth(sheet, from, to, width); err != nil {
		w.err = fmt.Errorf("width %s!%s:%s: %w", sheet, from, to, err)
	}
}

func (w *sheetWriter) summary(r assessment.Result) {
	w.row(SheetSummary, 1, "Assessment", string(r.Track))
	w.row(SheetSummary, 2, "Score", r.Raw)
	w.row(SheetSummary, 3, "Maximum", r.Max)
	w.row(SheetSummary, 4, "Percentage", r.Percentage)
	w.row(SheetSummary, 5, "Maturity level", string(r.Level))
	w.row(SheetSummary, 6, "Interpretation", r.Interpretation)
	w.style(SheetSummary, "A1", "A6", w.header)
	w.style(SheetSummary, "B4", "B4", w.percent)
	w.width(SheetSummary, "A", "A", 18)
	w.width(SheetSummary, "B", "B", 80)
}

func (w *sheetWriter) categories(r assessment.Result) {
	w.row(SheetCategories, 1, "Category", "Score", "Maximum", "Percentage")
	w.style(SheetCategories, "A1", "D1", w.header)
	for i, c := range r.Categories {
		w.row(SheetCategories, i+2, c.Title, c.Raw, c.Max, c.Percentage)
	}
	if n := len(r.Categories); n > 0 {
		w.style(SheetCategories, "D2", fmt.Sprintf("D%d", n+1), w.percent)
	}
	w.width(SheetCategories, "A", "A", 48)
}

func (w *sheetWriter) benchmarks(comparisons []assessment.Comparison) {
	w.row(SheetBenchmarks, 1, "Benchmark", "Category", "You", "Benchmark", "Your advantage", "Benchmark advantage")
	w.style(SheetBenchmarks, "A1", "F1", w.header)
	row := 2
	for _, c := range comparisons {
		level := string(c.Overall.Level)
		w.row(SheetBenchmarks, row, level, "Overall score", c.Overall.YourScore, c.Overall.BenchmarkScore)
		row++
		first := row
		for _, cc := range c.Categories {
			w.row(SheetBenchmarks, row, level, cc.Title, cc.YourPercentage, cc.BenchmarkPercentage, cc.YourAdvantage, cc.BenchmarkAdvantage)
			row++
		}
		if row > first {
			w.style(SheetBenchmarks, fmt.Sprintf("C%d", first), fmt.Sprintf("F%d", row-1), w.percent)
		}
	}
	w.width(SheetBenchmarks, "A", "A", 22)
	w.width(SheetBenchmarks, "B", "B", 48)
}
