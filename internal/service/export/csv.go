// Package export holds the formatting collaborators: pure functions turning a
// calculated batch, a machine history or a monthly report into downloadable
// byte streams. Nothing in here mutates state.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/mamadbah2/milltrack/internal/domain/models"
)

// Column order is fixed so the files open cleanly in spreadsheet tools; keep
// it in sync with the XLSX exports.
var (
	machineColumns = []string{"Batch Number", "Start Date", "End Date", "Meter Value", "FTotal", "Average", "Status"}
	monthlyColumns = []string{"Batch Number", "Machine", "Start Date", "End Date", "Meter Value", "FTotal", "Average", "Status"}
)

// MachineCSV renders the batch history of one machine.
func MachineCSV(machineNumber int, batches []models.CalculatedBatch) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{fmt.Sprintf("Machine %d", machineNumber)},
		machineColumns,
	}
	for _, b := range batches {
		records = append(records, []string{
			b.BatchNumber,
			b.StartDate.String(),
			b.EndDate.String(),
			formatMeter(b.MeterValue),
			strconv.Itoa(b.FTotal),
			formatAverage(b.Average),
			string(b.Status),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write machine csv: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyCSV renders one month's report: a totals preamble followed by the
// month's batches.
func MonthlyCSV(report models.MonthlyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	topMachine := ""
	if report.TopMachine != nil {
		topMachine = strconv.Itoa(*report.TopMachine)
	}

	records := [][]string{
		{"Month", report.Month},
		{"Total Batches", strconv.Itoa(report.TotalBatches)},
		{"Total Meter", formatMeter(report.TotalMeter)},
		{"Total FTotal", strconv.Itoa(report.TotalFTotal)},
		{"Top Machine", topMachine},
		{},
		monthlyColumns,
	}
	for _, b := range report.Batches {
		records = append(records, []string{
			b.BatchNumber,
			strconv.Itoa(b.MachineNumber),
			b.StartDate.String(),
			b.EndDate.String(),
			formatMeter(b.MeterValue),
			strconv.Itoa(b.FTotal),
			formatAverage(b.Average),
			string(b.Status),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write monthly csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatMeter(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
