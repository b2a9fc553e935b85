package service

import (
	"context"
	"fmt"
	"sync"
)

// MemoryDedup is the in-process DedupChecker used when Redis is disabled.
type MemoryDedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryDedup() *MemoryDedup {
	return &MemoryDedup{seen: make(map[string]struct{})}
}

func (m *MemoryDedup) Claim(_ context.Context, orderID int64, status string) (bool, error) {
	key := memoryKey(orderID, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[key]; ok {
		return false, nil
	}
	m.seen[key] = struct{}{}
	return true, nil
}

func memoryKey(orderID int64, status string) string {
	return fmt.Sprintf("%d:%s", orderID, status)
}
