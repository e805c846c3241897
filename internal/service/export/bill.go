package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mamadbah2/milltrack/internal/domain/models"
)

// Bill renders a one-page PDF bill for a single batch. Layout is for human
// eyes only; nothing downstream parses it.
func Bill(batch models.CalculatedBatch, settings models.Settings, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Bill %s", batch.BatchNumber), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, settings.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Production Bill", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Batch Number", batch.BatchNumber},
		{"Machine", fmt.Sprintf("%d", batch.MachineNumber)},
		{"Start Date", batch.StartDate.String()},
		{"End Date", batch.EndDate.String()},
		{"Meter Value", formatMeter(batch.MeterValue)},
		{"FTotal", fmt.Sprintf("%d", batch.FTotal)},
		{"Average", formatAverage(batch.Average)},
		{"Status", string(batch.Status)},
	}

	pdf.SetFont("Helvetica", "", 12)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(60, 9, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 9, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render bill pdf: %w", err)
	}
	return buf.Bytes(), nil
}
