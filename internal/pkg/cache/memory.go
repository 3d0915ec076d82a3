package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero value means no expiry
}

type memoryStore struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	serviceName string

	// now is swappable so tests can drive expiry without sleeping.
	now func() time.Time
}

// NewMemoryStore returns a process-local Store. It honours TTLs the same
// way Redis does, so the pending-purchase expiry semantics hold in
// development mode too.
func NewMemoryStore(serviceName string) Store {
	return &memoryStore{
		entries:     make(map[string]memoryEntry),
		serviceName: serviceName,
		now:         time.Now,
	}
}

// NewMemoryStoreAt is NewMemoryStore with an injectable clock, for tests.
func NewMemoryStoreAt(serviceName string, now func() time.Time) Store {
	return &memoryStore{
		entries:     make(map[string]memoryEntry),
		serviceName: serviceName,
		now:         now,
	}
}

func (m *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", nil
	}
	return e.value, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryStore) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", m.serviceName, operation, key)
}
