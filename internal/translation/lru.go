package translation

import "container/list"

// DefaultCacheSize bounds the result cache. Translations are expensive
// (hundreds of milliseconds each) and small (strings), so a modest cache
// pays for itself on repeated phrases.
const DefaultCacheSize = 200

type cacheEntry struct {
	key   string
	value string
}

// lruCache is a bounded least-recently-used map from cache key to
// translated text. Not safe for concurrent use; the Translator's mutex
// covers it.
type lruCache struct {
	capacity int
	order    *list.List // front = most recent
	items    map[string]*list.Element
}

func newLRUCache(capacity int) *lruCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

func (c *lruCache) put(key, value string) {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = value
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lruCache) len() int {
	return c.order.Len()
}
