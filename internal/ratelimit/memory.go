package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a CounterStore for a single process. Counters are not shared between
// instances, so deployments with more than one replica should use Redis.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

type counter struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates an in-process counter store. now may be nil.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		counters: make(map[string]*counter),
		now:      now,
	}
}

// IncrWithExpiry increments key, starting a fresh window if the previous one lapsed
func (m *MemoryStore) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	c, ok := m.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &counter{expiresAt: now.Add(window)}
		m.counters[key] = c
	}
	c.count++
	return c.count, nil
}

// Sweep drops expired counters.
func (m *MemoryStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, c := range m.counters {
		if !now.Before(c.expiresAt) {
			delete(m.counters, key)
		}
	}
}

// Run sweeps expired counters every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *MemoryStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters)
}
