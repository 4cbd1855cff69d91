// internal/store/memory.go
//
// In-memory implementation of the KV interface.
// Used in tests and when STORE_PATH=":memory:"; nothing survives a restart,
// so a resumable game only lives as long as the process.
//
// Characteristics:
//   - Values are copied on the way in and out.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get returns ErrNotFound for missing keys.

package store

import (
	"context"
	"errors"
	"sync"
)

// KV is the durable local key-value store the client persists its resume hint to.
// Implementations may be backed by memory (this file) or SQLite.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("not found")

// memory is an in-memory map-based KV implementation.
type memory struct {
	mu     sync.RWMutex      // guards values
	values map[string][]byte // keyed by store key
}

// NewMemoryKV constructs a new in-memory KV.
func NewMemoryKV() KV {
	return &memory{values: make(map[string][]byte)}
}

func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
