package store

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound signals that no batch or batch type carries the requested id.
// Deletes and updates of unknown ids report this instead of silently
// succeeding.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateBatchNumber signals a case-insensitive batch number collision.
var ErrDuplicateBatchNumber = errors.New("batch number already in use")

// ErrSetupRequired signals that the setup wizard has not been completed yet,
// so there is no machine count to validate against.
var ErrSetupRequired = errors.New("setup not completed")

// FieldErrors carries per-field validation messages for the form that issued
// the mutation. Handlers surface it as an inline, recoverable 400.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}
