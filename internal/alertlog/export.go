package alertlog

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// BuildIncidentPDF renders a minimal PDF of a subject's alert history.
func BuildIncidentPDF(subjectID string, events []Event) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Alert Delivery Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Subject: %s", subjectID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Events: %d", len(events)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Kind", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Guardian", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Channel", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Reason", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, event := range events {
		pdf.CellFormat(40, 6, event.OccurredAt.Format("2006-01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, event.Kind, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, event.Guardian, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, event.Channel, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, event.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, event.Reason, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildIncidentXLSX renders a minimal XLSX of a subject's alert history.
func BuildIncidentXLSX(subjectID string, events []Event) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "events"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Alert Delivery Report")
	_ = f.SetCellValue(sheet, "A2", "Subject")
	_ = f.SetCellValue(sheet, "B2", subjectID)

	headers := []string{"Time", "Kind", "Guardian", "Channel", "Status", "Reason"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 4)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, header)
	}
	for row, event := range events {
		values := []any{
			event.OccurredAt.Format(time.RFC3339),
			event.Kind,
			event.Guardian,
			event.Channel,
			event.Status,
			event.Reason,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+5)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
