package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/uniplan/timetable-api/internal/models"
)

// TimetableDocument is the renderable form of a proposal timetable: one row
// per catalog slot, one column per weekday.
type TimetableDocument struct {
	Title string
	Slots []models.ClassSlot
	// Cells maps slot index -> weekday -> cell text (section code + professor).
	Cells map[int]map[models.Weekday]string
}

// PDFExporter renders a timetable grid into an A4 landscape PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF document for a timetable.
func (e *PDFExporter) Render(doc TimetableDocument) ([]byte, error) {
	if len(doc.Slots) == 0 {
		return nil, fmt.Errorf("pdf requires at least one catalog slot")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	const timeColWidth = 32.0
	dayColWidth := (277.0 - timeColWidth) / float64(len(models.Weekdays))

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(timeColWidth, 8, "Time", "1", 0, "C", false, 0, "")
	for _, day := range models.Weekdays {
		pdf.CellFormat(dayColWidth, 8, day.Label(), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for idx, slot := range doc.Slots {
		window := fmt.Sprintf("%s-%s", slot.StartMinute.Clock(), slot.EndMinute.Clock())
		pdf.CellFormat(timeColWidth, 7, window, "1", 0, "C", false, 0, "")
		for _, day := range models.Weekdays {
			var value string
			if row, ok := doc.Cells[idx]; ok {
				value = row[day]
			}
			pdf.CellFormat(dayColWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
