package svgcache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/benoitkugler/svgtree/internal/logx"
)

// BuildFunc builds the value stored for a key.
type BuildFunc[V any] func(ctx context.Context) (V, error)

// Stats reports the activity of a cache.
type Stats struct {
	Entries  int // keys currently held
	Builds   int // successful builds
	Failures int // failed builds, which are not cached
	Hits     int // acquisitions served without building
}

type entry[V any] struct {
	value V
	refs  int
}

// Cache maps asset identities (typically resolved file paths) to
// shared values, counting the references of each requester.
// The zero value is not usable: use New.
type Cache[V any] struct {
	lock  *TxLock
	group singleflight.Group

	mu      sync.Mutex // guards the fields below
	entries map[string]*entry[V]
	waiting map[string]int // acquisitions in a build, not yet referenced
	stats   Stats
}

// New returns an empty cache. Transactions on the cached values
// are serialized by lock. A nil lock is replaced by a new one.
func New[V any](lock *TxLock) *Cache[V] {
	if lock == nil {
		lock = new(TxLock)
	}
	return &Cache[V]{
		lock:    lock,
		entries: make(map[string]*entry[V]),
		waiting: make(map[string]int),
	}
}

// Lock returns the transaction lock guarding the cached values.
func (c *Cache[V]) Lock() *TxLock { return c.lock }

// Acquire returns the value for key, calling build on a miss.
// Concurrent acquisitions of the same key share one build: they all
// wait for it and receive the same value, or the same error.
// Failed builds are not cached, so that a later call may retry.
// Each successful Acquire must be balanced by a Release.
func (c *Cache[V]) Acquire(ctx context.Context, key string, build BuildFunc[V]) (V, error) {
	if v, ok := c.hitOrWait(key); ok {
		return v, nil
	}

	out, err, _ := c.group.Do(key, func() (interface{}, error) {
		// a concurrent build may have completed meanwhile
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return e.value, nil
		}
		c.mu.Unlock()

		v, err := build(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.stats.Failures++
			return v, err
		}
		c.stats.Builds++
		c.entries[key] = &entry[V]{value: v}
		logx.Logger().Debug("svg cache entry built", "key", key)
		return v, nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waiting[key]--; c.waiting[key] <= 0 {
		delete(c.waiting, key)
	}
	if err != nil {
		var zero V
		return zero, fmt.Errorf("svgcache: building %q: %w", key, err)
	}
	e, ok := c.entries[key]
	if !ok { // entries are not evicted while waited for
		v, _ := out.(V)
		e = &entry[V]{value: v}
		c.entries[key] = e
	}
	e.refs++
	return e.value, nil
}

// hitOrWait takes a reference on the entry for key, or registers
// the caller as waiting for its build.
func (c *Cache[V]) hitOrWait(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.waiting[key]++
		var zero V
		return zero, false
	}
	e.refs++
	c.stats.Hits++
	return e.value, true
}

// Release drops one reference to key, evicting the value when
// no reference remains and no acquisition is waiting for it.
// It returns false if key is not held.
func (c *Cache[V]) Release(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.refs == 0 {
		return false
	}
	e.refs--
	if e.refs == 0 && c.waiting[key] == 0 {
		delete(c.entries, key)
		logx.Logger().Debug("svg cache entry evicted", "key", key)
	}
	return true
}

// Len returns the number of cached keys.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}
