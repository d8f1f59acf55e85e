package database

import (
	"context"
	"sync"
)

// MemoryLedger is the in-process ledger used when redis is not configured.
type MemoryLedger struct {
	mu   sync.RWMutex
	seen map[string]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]int64)}
}

func (m *MemoryLedger) Seen(_ context.Context, url string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.seen[url]
	return ok, nil
}

func (m *MemoryLedger) Record(_ context.Context, url string, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[url]; !ok {
		m.seen[url] = size
	}
	return nil
}

func (m *MemoryLedger) Close() error { return nil }
