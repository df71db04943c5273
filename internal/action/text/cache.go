package text

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/golang/groupcache/lru"
)

// patternKey identifies a compiled pattern. Options and timeout are part of
// the key since they are baked into the compiled Regexp.
type patternKey struct {
	pattern string
	opts    regexp2.RegexOptions
	timeout time.Duration
}

// PatternCache keeps recently compiled patterns. It is safe for concurrent
// use and may be shared by several Replace actions.
type PatternCache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewPatternCache creates a cache holding up to size patterns.
// A size of zero or less returns nil, which disables caching.
func NewPatternCache(size int) *PatternCache {
	if size <= 0 {
		return nil
	}
	return &PatternCache{lru: lru.New(size)}
}

func (c *PatternCache) get(k patternKey) (*regexp2.Regexp, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	v, ok := c.lru.Get(k)
	c.mu.Unlock()
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.(*regexp2.Regexp), true
}

func (c *PatternCache) add(k patternKey, re *regexp2.Regexp) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lru.Add(k, re)
	c.mu.Unlock()
}

// Len returns the number of cached patterns.
func (c *PatternCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns cache hits and misses since creation.
func (c *PatternCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
