package models

import "time"

// Backup is the JSON envelope produced by the backup export and consumed by
// restore. Round-tripping it must preserve settings and batches exactly.
type Backup struct {
	Settings   *Settings `json:"settings"`
	Batches    []Batch   `json:"batches"`
	BackupDate time.Time `json:"backupDate"`
}
