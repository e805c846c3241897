package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mamadbah2/milltrack/internal/domain/models"
)

// Backup serializes the durable state into the JSON backup envelope.
func Backup(settings *models.Settings, batches []models.Batch, now time.Time) ([]byte, error) {
	envelope := models.Backup{
		Settings:   settings,
		Batches:    batches,
		BackupDate: now.UTC(),
	}
	if envelope.Batches == nil {
		envelope.Batches = []models.Batch{}
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// ParseBackup decodes a backup file produced by Backup. Restore must
// round-trip the batch list and settings exactly.
func ParseBackup(data []byte) (models.Backup, error) {
	var envelope models.Backup
	if err := json.Unmarshal(data, &envelope); err != nil {
		return models.Backup{}, fmt.Errorf("decode backup: %w", err)
	}

	for i, b := range envelope.Batches {
		if b.ID == "" {
			return models.Backup{}, fmt.Errorf("decode backup: batch %d has no id", i)
		}
	}
	return envelope, nil
}
