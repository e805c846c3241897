package models

// BatchStatus tracks where a production run currently stands.
type BatchStatus string

const (
	StatusInProgress BatchStatus = "in-progress"
	StatusCompleted  BatchStatus = "completed"
	StatusDelayed    BatchStatus = "delayed"
)

// Valid reports whether the status is one of the known enum values.
func (s BatchStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusDelayed:
		return true
	}
	return false
}

// Batch is one production run on a machine.
type Batch struct {
	ID            string      `json:"id"`
	BatchNumber   string      `json:"batchNumber"`
	MachineNumber int         `json:"machineNumber"`
	StartDate     Date        `json:"startDate"`
	EndDate       Date        `json:"endDate"`
	MeterValue    float64     `json:"meterValue"`
	Status        BatchStatus `json:"status"`
	Color         string      `json:"color"`
}

// BatchType is a reusable template (batch number + default color) offered when
// creating new batches. Deleting one has no effect on existing batches.
type BatchType struct {
	ID          string `json:"id"`
	BatchNumber string `json:"batchNumber"`
	Color       string `json:"color"`
}

// CalculatedBatch is a Batch with its derived quantities attached. It is a
// view-only projection, rebuilt on every read and never persisted.
type CalculatedBatch struct {
	Batch
	FTotal  int     `json:"ftotal"`
	Average float64 `json:"average"`
}

// MachineBucket groups the calculated batches assigned to one machine.
type MachineBucket struct {
	MachineNumber int               `json:"machineNumber"`
	Batches       []CalculatedBatch `json:"batches"`
}
