package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is a map-backed Repository. It is the test double for the Mongo
// adapter and also serves ad-hoc tooling that needs a store without a
// database. Values are kept as marshaled JSON so Get/Set round-trip through
// the same encoding the durable backend uses.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes map[string]int

	// FailWrites makes every Set return an error, for exercising the
	// "persistence failed, memory stays authoritative" path.
	FailWrites bool
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values: map[string][]byte{},
		writes: map[string]int{},
	}
}

// Get implements Repository.
func (m *Memory) Get(_ context.Context, key string, out any) error {
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()

	if !ok {
		return ErrNoValue
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode blob %s: %w", key, err)
	}
	return nil
}

// Set implements Repository.
func (m *Memory) Set(_ context.Context, key string, value any) error {
	if m.FailWrites {
		return fmt.Errorf("write blob %s: store unavailable", key)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode blob %s: %w", key, err)
	}

	m.mu.Lock()
	m.values[key] = raw
	m.writes[key]++
	m.mu.Unlock()
	return nil
}

// Delete implements Repository.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Writes reports how many times a key has been written; store tests use it to
// assert that every mutation persists.
func (m *Memory) Writes(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[key]
}

// SetRaw stores a raw JSON payload, bypassing marshaling. Tests use it to
// plant malformed blobs.
func (m *Memory) SetRaw(key string, raw []byte) {
	m.mu.Lock()
	m.values[key] = append([]byte(nil), raw...)
	m.mu.Unlock()
}
