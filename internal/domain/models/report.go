package models

// MonthlyReport aggregates the batches whose start date falls in one calendar
// month. Computed on demand, never persisted.
type MonthlyReport struct {
	Month        string              `json:"month"` // e.g. "January 2026"
	TotalBatches int                 `json:"totalBatches"`
	TotalMeter   float64             `json:"totalMeter"`
	TotalFTotal  int                 `json:"totalFtotal"`
	TopMachine   *int                `json:"topMachine"`
	StatusCounts map[BatchStatus]int `json:"statusCounts"`
	Batches      []CalculatedBatch   `json:"batches"`
}
