package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shuliangfu/render-sub000/pkg/metadata"
)

// DefaultMaxSize bounds the in-process store.
const DefaultMaxSize = 100

// MemoryStore is the default in-process metadata cache: a bounded map with
// FIFO eviction past MaxSize and lazy TTL expiry checked on read. Suitable
// for single-server deployments; use RedisStore or S3Store to share
// resolved metadata across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	order   []string
	maxSize int
}

// MemoryStoreOption configures MemoryStore behavior.
type MemoryStoreOption func(*MemoryStore)

// WithMaxSize bounds the number of cached entries. Default: 100.
func WithMaxSize(n int) MemoryStoreOption {
	return func(m *MemoryStore) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// NewMemoryStore creates a bounded in-process metadata cache.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]Entry),
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns cached metadata, lazily dropping the entry when its TTL has
// passed.
func (m *MemoryStore) Get(ctx context.Context, key string) (*metadata.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if e.Expired(time.Now()) {
		m.remove(key)
		return nil, nil
	}
	return e.Value, nil
}

// Set stores metadata, evicting the oldest insertion when full.
func (m *MemoryStore) Set(ctx context.Context, key string, md *metadata.Metadata, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if _, exists := m.entries[key]; !exists {
		if len(m.entries) >= m.maxSize && len(m.order) > 0 {
			m.remove(m.order[0])
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = Entry{Value: md, ExpiresAt: expiresAt}
	return nil
}

// Delete removes an entry.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(key)
	return nil
}

// Len reports the number of live entries, expired ones included until a
// read drops them.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// remove drops key from the map and the insertion order. Caller holds mu.
func (m *MemoryStore) remove(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
