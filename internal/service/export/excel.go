package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/milltrack/internal/domain/models"
)

const sheetName = "Sheet1"

// MachineXLSX renders a machine's batch history as an Excel workbook, same
// columns as MachineCSV.
func MachineXLSX(machineNumber int, batches []models.CalculatedBatch) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	setRow(f, 1, []any{fmt.Sprintf("Machine %d", machineNumber)})
	setRow(f, 2, toAny(machineColumns))
	for i, b := range batches {
		setRow(f, i+3, []any{
			b.BatchNumber,
			b.StartDate.String(),
			b.EndDate.String(),
			b.MeterValue,
			b.FTotal,
			b.Average,
			string(b.Status),
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write machine xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyXLSX renders one month's report as an Excel workbook, mirroring
// MonthlyCSV's layout.
func MonthlyXLSX(report models.MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	topMachine := ""
	if report.TopMachine != nil {
		topMachine = strconv.Itoa(*report.TopMachine)
	}

	setRow(f, 1, []any{"Month", report.Month})
	setRow(f, 2, []any{"Total Batches", report.TotalBatches})
	setRow(f, 3, []any{"Total Meter", report.TotalMeter})
	setRow(f, 4, []any{"Total FTotal", report.TotalFTotal})
	setRow(f, 5, []any{"Top Machine", topMachine})
	setRow(f, 7, toAny(monthlyColumns))
	for i, b := range report.Batches {
		setRow(f, i+8, []any{
			b.BatchNumber,
			b.MachineNumber,
			b.StartDate.String(),
			b.EndDate.String(),
			b.MeterValue,
			b.FTotal,
			b.Average,
			string(b.Status),
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write monthly xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheetName, cell, v)
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
