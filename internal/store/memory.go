package store

import (
	"context"
	"sync"
	"time"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
)

type memoryEntry struct {
	value     string
	hash      map[string]string
	expiresAt time.Time
}

// MemoryKV is a process-local KV with lazy expiry
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	clock   adapter.Clock
}

// NewMemoryKV creates an empty in-memory KV
func NewMemoryKV(clock adapter.Clock) *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]*memoryEntry),
		clock:   clock,
	}
}

// liveLocked returns the entry for key, dropping it when expired
func (m *MemoryKV) liveLocked(key string) (*memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e, true
}

func (m *MemoryKV) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.clock.Now().Add(ttl)
}

func (m *MemoryKV) HashGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string)
	if e, ok := m.liveLocked(key); ok {
		for k, v := range e.hash {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryKV) HashSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.liveLocked(key)
	if !ok {
		e = &memoryEntry{hash: make(map[string]string)}
		m.entries[key] = e
	}
	if e.hash == nil {
		e.hash = make(map[string]string)
	}
	for k, v := range fields {
		e.hash[k] = v
	}
	return nil
}

func (m *MemoryKV) HashReplace(_ context.Context, key string, fields map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := make(map[string]string, len(fields))
	for k, v := range fields {
		hash[k] = v
	}
	m.entries[key] = &memoryEntry{hash: hash, expiresAt: m.expiry(ttl)}
	return nil
}

func (m *MemoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.liveLocked(key); ok {
		e.expiresAt = m.expiry(ttl)
	}
	return nil
}

func (m *MemoryKV) SetIfNotExists(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.liveLocked(key); ok {
		return false, nil
	}
	m.entries[key] = &memoryEntry{value: value, expiresAt: m.expiry(ttl)}
	return true, nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *MemoryKV) DeleteIfValue(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.liveLocked(key)
	if !ok || e.hash != nil || e.value != value {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

func (m *MemoryKV) DeleteIfHashField(_ context.Context, key, field, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.liveLocked(key)
	if !ok || e.hash == nil {
		return false, nil
	}
	if v, found := e.hash[field]; !found || v != value {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

// Len returns the number of live keys
func (m *MemoryKV) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.entries {
		if _, ok := m.liveLocked(key); ok {
			n++
		}
	}
	return n
}
