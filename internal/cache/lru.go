package cache

import (
	"container/list"
)

// LRU is a size-bounded least-recently-used cache.
// It is not safe for concurrent use.
type LRU[K comparable, V any] struct {
	maxSize int
	items   map[K]*list.Element
	lru     *list.List

	hits   int
	misses int
}

type cacheItem[K comparable, V any] struct {
	key  K
	data V
}

// NewLRU creates a new LRU cache holding at most maxSize entries.
// A non-positive maxSize disables caching.
func NewLRU[K comparable, V any](maxSize int) *LRU[K, V] {
	return &LRU[K, V]{
		maxSize: maxSize,
		items:   make(map[K]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves a value from the cache
func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}
	c.hits++

	// Move to front (most recently used)
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheItem[K, V]).data, true
}

// Set stores a value in the cache
func (c *LRU[K, V]) Set(key K, data V) {
	if c.maxSize <= 0 {
		return
	}

	if elem, exists := c.items[key]; exists {
		elem.Value.(*cacheItem[K, V]).data = data
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(&cacheItem[K, V]{key: key, data: data})
	c.items[key] = elem

	// Evict if over capacity
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Values are only cached when load succeeds.
func (c *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[K, V])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// Size returns the current number of items in the cache
func (c *LRU[K, V]) Size() int {
	return len(c.items)
}

// Stats returns the hit and miss counters.
func (c *LRU[K, V]) Stats() (hits, misses int) {
	return c.hits, c.misses
}
