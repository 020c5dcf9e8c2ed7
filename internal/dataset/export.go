package dataset

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/diabetesguard/backend/internal/domain"
)

const (
	sheetOverview    = "Overview"
	sheetColumns     = "Columns"
	sheetCorrelation = "Correlation"
	sheetMissing     = "Missing Values"
)

// ExportWorkbook renders the summary and correlation matrix as an XLSX file.
func ExportWorkbook(summary domain.DatasetSummary, corr domain.CorrelationMatrix) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so Close is called explicitly below.

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("dataset: create header style: %w", err)
	}
	w := &sheetWriter{f: f, header: header}

	w.sheet(sheetOverview, []string{"Metric", "Value"}, []float64{28, 24})
	w.row([]any{"Total Records", summary.Records})
	w.row([]any{"Diabetes Rate (%)", summary.DiabetesRate})
	w.row([]any{"Average Age", summary.AverageAge})
	w.row([]any{"Average BMI", summary.AverageBMI})
	w.row([]any{"Generated At", summary.GeneratedAt.Format("2006-01-02 15:04:05")})

	w.sheet(sheetColumns, []string{"Column", "Count", "Missing", "Mean", "Std", "Min", "Median", "Max"}, []float64{30, 10, 10, 12, 12, 12, 12, 12})
	for _, c := range summary.Numeric {
		w.row([]any{c.Name, c.Count, c.Missing, c.Mean, c.Std, c.Min, c.Median, c.Max})
	}

	w.sheet(sheetCorrelation, append([]string{""}, corr.Columns...), []float64{30})
	for i, name := range corr.Columns {
		cells := make([]any, 0, len(corr.Columns)+1)
		cells = append(cells, name)
		for _, v := range corr.Values[i] {
			cells = append(cells, v)
		}
		w.row(cells)
	}

	w.sheet(sheetMissing, []string{"Column", "Missing"}, []float64{30, 12})
	names := make([]string, 0, len(summary.MissingValues))
	for name := range summary.MissingValues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.row([]any{name, summary.MissingValues[name]})
	}

	if w.err != nil {
		f.Close()
		return nil, w.err
	}

	// Remove the default sheet once another sheet exists.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("dataset: delete default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetOverview); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("dataset: write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("dataset: close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows to the current sheet and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	header int
	name   string
	next   int
	err    error
}

func (w *sheetWriter) sheet(name string, headers []string, widths []float64) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("dataset: create sheet %s: %w", name, err)
		return
	}
	w.name, w.next = name, 1

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = fmt.Errorf("dataset: column name: %w", err)
			return
		}
		if err := w.f.SetColWidth(name, col, col, width); err != nil {
			w.err = fmt.Errorf("dataset: set column width: %w", err)
			return
		}
	}

	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	start, end := w.row(cells)
	if w.err == nil && len(headers) > 0 {
		if err := w.f.SetCellStyle(name, start, end, w.header); err != nil {
			w.err = fmt.Errorf("dataset: set header style: %w", err)
		}
	}
}

// row writes cells on the next row and returns its first and last cell names.
func (w *sheetWriter) row(cells []any) (first, last string) {
	if w.err != nil {
		return "", ""
	}
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, w.next)
		if err != nil {
			w.err = fmt.Errorf("dataset: convert coordinates: %w", err)
			return "", ""
		}
		if err := w.f.SetCellValue(w.name, cell, v); err != nil {
			w.err = fmt.Errorf("dataset: set cell %s: %w", cell, err)
			return "", ""
		}
		if i == 0 {
			first = cell
		}
		last = cell
	}
	w.next++
	return first, last
}
