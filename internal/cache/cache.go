// Package cache provides a TTL key/value store used for geocoding results and
// dashboard stats. The default backend is process-local memory; a Redis backend
// implements the same interface for multi-instance deployments.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the cache contract. Get reports a miss (not an error) for absent or
// expired keys.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is a mutex-guarded in-memory Store with lazy expiry on read, a
// periodic background sweep, and a capacity bound that evicts the oldest
// insertion on overflow. State is per-process; cross-process staleness is an
// accepted limitation of this backend.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]entry
	order    []string
	capacity int
	done     chan struct{}
	closeOne sync.Once
}

func NewMemory(capacity int, sweepInterval time.Duration) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	m := &Memory{
		entries:  make(map[string]entry),
		capacity: capacity,
		done:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweep(sweepInterval)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		m.compactOrderLocked()
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		if len(m.entries) >= m.capacity {
			m.evictOldestLocked()
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.compactOrderLocked()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	m.order = nil
	return nil
}

// Close stops the background sweep goroutine.
func (m *Memory) Close() {
	m.closeOne.Do(func() { close(m.done) })
}

// compactOrderLocked rebuilds the insertion-order slice without the keys of
// entries removed by expiry or Delete, so the slice cannot outgrow the live
// set without bound. It only fires once the slice exceeds both the capacity
// and twice the live entry count, keeping the amortized cost per removal
// constant.
func (m *Memory) compactOrderLocked() {
	if len(m.order) <= m.capacity || len(m.order) <= 2*len(m.entries) {
		return
	}
	kept := m.order[:0]
	for _, key := range m.order {
		if _, ok := m.entries[key]; ok {
			kept = append(kept, key)
		}
	}
	m.order = kept
}

// evictOldestLocked drops the oldest still-present insertion. Keys already
// deleted or replaced are skipped as the order slice is drained.
func (m *Memory) evictOldestLocked() {
	for len(m.order) > 0 {
		key := m.order[0]
		m.order = m.order[1:]
		if _, ok := m.entries[key]; ok {
			delete(m.entries, key)
			return
		}
	}
}

func (m *Memory) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.compactOrderLocked()
			m.mu.Unlock()
		}
	}
}
