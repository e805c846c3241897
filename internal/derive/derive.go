// Package derive holds the pure batch-to-metrics transforms. Nothing in here
// touches storage or logging; the state container and handlers call these on
// every read.
package derive

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/milltrack/internal/domain/models"
)

// foldLength is the meters-per-fold divisor behind the FTotal quantity.
const foldLength = 4

// Calculate attaches the derived quantities to a batch. FTotal is
// meterValue/4 rounded to the nearest integer, halves away from zero (Go
// math.Round). Average is meters per fold rounded to 2 decimals with the same
// half-away-from-zero rule, or 0 when the fold count is 0.
func Calculate(b models.Batch) models.CalculatedBatch {
	ftotal := int(math.Round(b.MeterValue / foldLength))

	var average float64
	if ftotal != 0 {
		average = decimal.NewFromFloat(b.MeterValue).
			Div(decimal.NewFromInt(int64(ftotal))).
			Round(2).
			InexactFloat64()
	}

	return models.CalculatedBatch{Batch: b, FTotal: ftotal, Average: average}
}

// CalculateAll derives every batch and orders the result most-recent-first by
// start date. The sort is stable: batches sharing a start date keep their
// relative input order.
func CalculateAll(batches []models.Batch) []models.CalculatedBatch {
	out := make([]models.CalculatedBatch, 0, len(batches))
	for _, b := range batches {
		out = append(out, Calculate(b))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Time.After(out[j].StartDate.Time)
	})

	return out
}

// GroupByMachine buckets calculated batches by machine number, producing one
// bucket per machine 1..machineCount even when empty and preserving the
// CalculateAll ordering inside each bucket. Batches pointing at a machine
// outside the configured range are skipped rather than invented a bucket for;
// validation upstream keeps them from existing in the first place.
func GroupByMachine(calculated []models.CalculatedBatch, machineCount int) []models.MachineBucket {
	buckets := make([]models.MachineBucket, machineCount)
	for i := range buckets {
		buckets[i] = models.MachineBucket{
			MachineNumber: i + 1,
			Batches:       []models.CalculatedBatch{},
		}
	}

	for _, c := range calculated {
		if c.MachineNumber < 1 || c.MachineNumber > machineCount {
			continue
		}
		idx := c.MachineNumber - 1
		buckets[idx].Batches = append(buckets[idx].Batches, c)
	}

	return buckets
}

// MonthTotals sums batch count, meters and folds over the batches whose start
// date falls in the given month. An empty month yields zeroes, never an error.
func MonthTotals(calculated []models.CalculatedBatch, year int, month time.Month) (totalBatches int, totalMeter float64, totalFTotal int) {
	for _, c := range calculated {
		if !c.StartDate.InMonth(year, month) {
			continue
		}
		totalBatches++
		totalMeter += c.MeterValue
		totalFTotal += c.FTotal
	}
	return totalBatches, totalMeter, totalFTotal
}

// BuildMonthlyReport assembles the full report for one month: totals, status
// breakdown, the busiest machine and the month's batches in display order.
// TopMachine is nil for an empty month; a tie goes to the lower machine number.
func BuildMonthlyReport(calculated []models.CalculatedBatch, year int, month time.Month) models.MonthlyReport {
	report := models.MonthlyReport{
		Month:        fmt.Sprintf("%s %d", month.String(), year),
		StatusCounts: map[models.BatchStatus]int{},
		Batches:      []models.CalculatedBatch{},
	}

	perMachine := map[int]int{}
	for _, c := range calculated {
		if !c.StartDate.InMonth(year, month) {
			continue
		}
		report.TotalBatches++
		report.TotalMeter += c.MeterValue
		report.TotalFTotal += c.FTotal
		report.StatusCounts[c.Status]++
		perMachine[c.MachineNumber]++
		report.Batches = append(report.Batches, c)
	}

	var top, best int
	for machine, n := range perMachine {
		if n > best || (n == best && best > 0 && machine < top) {
			top, best = machine, n
		}
	}
	if best > 0 {
		report.TopMachine = &top
	}

	return report
}
