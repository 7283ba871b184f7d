package calculation

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// memo caches results for the lifetime of one search. It is safe for concurrent use;
// concurrent misses on the same key share a single computation.
type memo[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
	misses int
	group  singleflight.Group
}

func newMemo[K comparable, V any]() *memo[K, V] {
	return &memo[K, V]{values: make(map[K]V)}
}

func (m *memo[K, V]) lookup(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// get returns the cached value for key, computing and storing it on a miss
func (m *memo[K, V]) get(key K, compute func() V) V {
	if v, ok := m.lookup(key); ok {
		return v
	}

	v, _, _ := m.group.Do(fmt.Sprint(key), func() (any, error) {
		// A call that finished between the lookup and Do has already stored the value
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		computed := compute()
		m.mu.Lock()
		m.values[key] = computed
		m.misses++
		m.mu.Unlock()
		return computed, nil
	})
	return v.(V)
}

// computed reports how many distinct keys were evaluated
func (m *memo[K, V]) computed() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.misses
}
