package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// TimetableEntry is one line placed under a weekday column of the grid.
type TimetableEntry struct {
	Day  int // 0 = Monday .. 4 = Friday
	Text string
}

var weekdayHeaders = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// TimetableExporter renders a Monday-to-Friday grid of schedule entries.
type TimetableExporter struct{}

// NewTimetableExporter constructs a timetable exporter.
func NewTimetableExporter() *TimetableExporter {
	return &TimetableExporter{}
}

// Render lays the entries out in five weekday columns. Entries with a day
// outside Monday-Friday are ignored.
func (e *TimetableExporter) Render(entries []TimetableEntry, title string) ([]byte, error) {
	columns := make([][]string, len(weekdayHeaders))
	for _, entry := range entries {
		if entry.Day < 0 || entry.Day >= len(weekdayHeaders) {
			continue
		}
		columns[entry.Day] = append(columns[entry.Day], entry.Text)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pageWidth, _ := pdf.GetPageSize()
	colWidth := (pageWidth - 20) / float64(len(weekdayHeaders))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range weekdayHeaders {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	depth := 0
	for _, column := range columns {
		if len(column) > depth {
			depth = len(column)
		}
	}

	pdf.SetFont("Arial", "", 8)
	for rowIdx := 0; rowIdx < depth; rowIdx++ {
		for _, column := range columns {
			text := ""
			if rowIdx < len(column) {
				text = column[rowIdx]
			}
			pdf.CellFormat(colWidth, 10, text, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render timetable pdf: %w", err)
	}
	return buf.Bytes(), nil
}
