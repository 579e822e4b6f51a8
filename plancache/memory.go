package plancache

import (
	"context"
	"sync"

	"github.com/parserator/kernel/types"
)

// Memory is an in-process Cache backed by a map, the default backend a
// Kernel uses when no durable cache is configured. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]types.PlanCacheEntry
}

// NewMemory constructs an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]types.PlanCacheEntry)}
}

func (m *Memory) Get(_ context.Context, key string) (types.PlanCacheEntry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return types.PlanCacheEntry{}, false, nil
	}
	return types.ClonePlanCacheEntry(entry), true, nil
}

func (m *Memory) Set(_ context.Context, key string, entry types.PlanCacheEntry) error {
	m.mu.Lock()
	m.entries[key] = types.ClonePlanCacheEntry(entry)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]types.PlanCacheEntry)
	m.mu.Unlock()
	return nil
}

// Len reports the number of entries currently cached, for tests and metrics.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
