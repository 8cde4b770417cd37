// Package plancache holds import plans between preview and execution.
//
// Plans are opaque bytes to the cache. Entries expire after their TTL; an
// expired or unknown plan reads as ErrNotFound.
package plancache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown or expired plans.
var ErrNotFound = errors.New("plan not found or expired")

// Cache stores serialized plans by id.
type Cache interface {
	Put(ctx context.Context, id string, plan []byte, ttl time.Duration) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Memory is an in-process Cache, used when no Redis address is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

// Put stores a copy of plan. A non-positive ttl never expires.
func (m *Memory) Put(_ context.Context, id string, plan []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictLocked()

	e := memoryEntry{data: append([]byte(nil), plan...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[id] = e
	return nil
}

// Get returns a copy of the stored plan.
func (m *Memory) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || m.expired(e) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

// Delete removes a plan. Deleting an unknown id is not an error.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	return len(m.entries)
}

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

func (m *Memory) evictLocked() {
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
		}
	}
}
