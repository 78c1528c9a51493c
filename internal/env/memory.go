package env

import (
	"context"
	"maps"
	"sync"
)

// MemoryStorage is an in-process Storage.
//
// Thread-safety: all methods are safe for concurrent use. Concurrent writers
// to the same key resolve last-writer-wins.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// GetRaw returns the value stored under key.
func (m *MemoryStorage) GetRaw(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// SetRaw stores value under key, or deletes key when value is nil.
func (m *MemoryStorage) SetRaw(_ context.Context, key string, value *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.values, key)
		return nil
	}
	m.values[key] = *value
	return nil
}

// Snapshot returns a copy of all stored values.
func (m *MemoryStorage) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}

// Reset removes every value.
func (m *MemoryStorage) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
}
