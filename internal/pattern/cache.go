package pattern

import (
	"sync"
)

// Cache memoises compilation per source string. All patterns compiled
// through one cache share its options. Failed compilations are cached too.
type Cache struct {
	opts []Option

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	p   *Pattern
	err error
}

// NewCache creates a cache whose patterns are compiled with opts.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: opts, entries: make(map[string]cacheEntry)}
}

// Compile returns the cached pattern for src, compiling it on first use.
func (c *Cache) Compile(src string) (*Pattern, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[src]; ok {
		return e.p, e.err
	}
	p, err := Compile(src, c.opts...)
	c.entries[src] = cacheEntry{p: p, err: err}
	return p, err
}

// Len reports how many sources are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
