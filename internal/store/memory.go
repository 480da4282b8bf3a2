package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store for single-server deployments and tests
type Memory struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	zsets  map[string]map[string]float64
	expiry map[string]time.Time
	now    func() time.Time
	closed bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return NewMemoryClock(time.Now)
}

// NewMemoryClock creates an in-memory store with an injected clock,
// used by TTL tests
func NewMemoryClock(now func() time.Time) *Memory {
	return &Memory{
		hashes: make(map[string]map[string]string),
		zsets:  make(map[string]map[string]float64),
		expiry: make(map[string]time.Time),
		now:    now,
	}
}

// purgeLocked drops key if its TTL has passed. Callers hold the write lock.
func (m *Memory) purgeLocked(key string) {
	deadline, ok := m.expiry[key]
	if !ok || m.now().Before(deadline) {
		return
	}
	delete(m.hashes, key)
	delete(m.zsets, key)
	delete(m.expiry, key)
}

func (m *Memory) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.purgeLocked(key)
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		m.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = v
	}
	return nil
}

func (m *Memory) HGet(_ context.Context, key, field string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	m.purgeLocked(key)
	v, ok := m.hashes[key][field]
	return v, ok, nil
}

func (m *Memory) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.purgeLocked(key)
	out := make(map[string]string, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (m *Memory) HDel(_ context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.purgeLocked(key)
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.hashes, key)
	delete(m.zsets, key)
	delete(m.expiry, key)
	return nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.purgeLocked(key)
	if _, ok := m.hashes[key]; !ok {
		if _, ok := m.zsets[key]; !ok {
			return nil
		}
	}
	m.expiry[key] = m.now().Add(ttl)
	return nil
}

func (m *Memory) ZAdd(_ context.Context, key, member string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.purgeLocked(key)
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (m *Memory) ZScore(_ context.Context, key, member string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, false, ErrClosed
	}
	m.purgeLocked(key)
	score, ok := m.zsets[key][member]
	return score, ok, nil
}

func (m *Memory) ZRevRange(_ context.Context, key string, start, stop int) ([]ZEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.purgeLocked(key)
	entries := make([]ZEntry, 0, len(m.zsets[key]))
	for member, score := range m.zsets[key] {
		entries = append(entries, ZEntry{Member: member, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Member < entries[j].Member
	})
	if start < 0 {
		start = 0
	}
	if start >= len(entries) {
		return nil, nil
	}
	if stop < 0 || stop >= len(entries) {
		stop = len(entries) - 1
	}
	return entries[start : stop+1], nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
