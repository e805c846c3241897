// Package blobstore defines the persistence contract for the dashboard: a
// small fixed set of logical keys, each mapping to one JSON value. Backends
// are swappable; the Mongo adapter is the durable one and the in-memory Store
// backs tests.
package blobstore

import (
	"context"
	"errors"
)

// Logical keys. The persisted layout is exactly these five values; shape drift
// is handled by defaulting on read, never by migration.
const (
	KeySettings   = "settings"
	KeyBatches    = "batches"
	KeyBatchTypes = "batch-types"
	KeyTheme      = "theme"
	KeySeeded     = "seeded"
)

// ErrNoValue signals that nothing has ever been stored under a key. Callers
// fall back to their default.
var ErrNoValue = errors.New("no value stored for key")

// Repository is the logical-key blob store injected into the state container.
type Repository interface {
	// Get unmarshals the value stored under key into out. Returns ErrNoValue
	// when the key was never written.
	Get(ctx context.Context, key string, out any) error
	// Set marshals value and stores it under key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error
	// Delete removes the value under key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
