// Package cache provides the occupancy count cache used by the vacancy advisor.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache stores small integer counters keyed by string
type Cache interface {
	// GetInt64 returns the cached value and whether it was present.
	GetInt64(ctx context.Context, key string) (int64, bool, error)
	SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// OccupancyKey builds the key for a placement's Active student count.
// A nil section means the whole class.
func OccupancyKey(classID int64, sectionID *int64) string {
	if sectionID == nil {
		return fmt.Sprintf("occupancy:%d:all", classID)
	}
	return fmt.Sprintf("occupancy:%d:%d", classID, *sectionID)
}

// Noop never stores anything
type Noop struct{}

func (Noop) GetInt64(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (Noop) SetInt64(context.Context, string, int64, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error { return nil }

type memoryEntry struct {
	value     int64
	expiresAt time.Time
}

// Memory is a process-local cache, used in tests and when Redis is disabled
// but caching is still wanted.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty Memory cache
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) GetInt64(_ context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return 0, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return 0, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) SetInt64(_ context.Context, key string, value int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
