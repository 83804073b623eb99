package content

import (
	"container/list"
	"sync"

	"github.com/rob637/passcpa-sub012/internal/selector"
)

// DefaultCacheSize is the number of filtered pools kept when no size is set.
const DefaultCacheSize = 64

// Cache is an LRU cache of item pools keyed by filter. It is safe for
// concurrent use. Values are copied in and out so callers may modify them.
type Cache struct {
	capacity int
	mu       sync.Mutex

	entries map[string]*cacheEntry
	order   *list.List // front = most recently used
}

type cacheEntry struct {
	key     string
	items   []selector.Item
	element *list.Element
}

// NewCache creates a cache holding at most capacity pools.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry),
		order:    list.New(),
	}
}

// Get returns a copy of the cached pool for key.
func (c *Cache) Get(key string) ([]selector.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e.element)
	return cloneItems(e.items), true
}

// Put stores a copy of items under key, evicting the least recently used
// pool when full.
func (c *Cache) Put(key string, items []selector.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.items = cloneItems(items)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest.Value.(*cacheEntry))
	}

	e := &cacheEntry{key: key, items: cloneItems(items)}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

// Len returns the number of cached pools.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached pool.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order.Init()
}

// remove must be called with the lock held.
func (c *Cache) remove(e *cacheEntry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}

func cloneItems(items []selector.Item) []selector.Item {
	if items == nil {
		return nil
	}
	out := make([]selector.Item, len(items))
	copy(out, items)
	return out
}
