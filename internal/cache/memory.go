package cache

import (
	"context"
	"sync"
)

// Memory is an in-memory KV for tests and ephemeral runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string

	// FailWrites makes Set return an error, for exercising the
	// swallow-and-log persistence failure path.
	FailWrites error
}

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }

var _ KV = (*Memory)(nil)
