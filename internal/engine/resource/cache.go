// Package resource implements the reference-counted store of shared GPU
// resources. Entries are keyed by path or content hash; a key that is
// present always maps to exactly one GPU object.
package resource

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/logger"
)

// Loader produces a resource and reports it through complete, possibly
// later from the render thread's completion queue. complete must be called
// exactly once; further calls are ignored.
type Loader[H any] func(complete func(H, error))

type entry[H any] struct {
	handle H
	refs   int
}

// Stats counts cache traffic.
type Stats struct {
	Hits     int
	Joins    int
	Loads    int
	Failures int
	Evicted  int
}

// Cache is a keyed arena of shared handles with explicit reference counts.
// It is not safe for concurrent use; every call happens on the render
// thread.
type Cache[H any] struct {
	kind    string
	entries map[Key]*entry[H]
	loading map[Key][]func(H, error)
	stats   Stats
	log     *zap.Logger
}

// New creates an empty cache. kind names the resource type in errors and
// logs.
func New[H any](kind string) *Cache[H] {
	return &Cache[H]{
		kind:    kind,
		entries: make(map[Key]*entry[H]),
		loading: make(map[Key][]func(H, error)),
		log:     logger.Named("cache").With(zap.String("kind", kind)),
	}
}

// Acquire obtains one reference to the resource under key and hands it to
// done.
//
// A live entry is returned synchronously without calling load. If a load
// for key is already in flight, done joins it. Otherwise load runs once;
// on success every waiter receives the handle and the entry starts with one
// reference per waiter. On failure no entry is created and every waiter
// receives a *LoadError.
func (c *Cache[H]) Acquire(key Key, load Loader[H], done func(H, error)) {
	if e, ok := c.entries[key]; ok {
		e.refs++
		c.stats.Hits++
		done(e.handle, nil)
		return
	}
	if waiters, ok := c.loading[key]; ok {
		c.loading[key] = append(waiters, done)
		c.stats.Joins++
		return
	}

	c.loading[key] = []func(H, error){done}
	c.stats.Loads++
	c.log.Debug("loading", zap.String("key", key.Short()))

	completed := false
	load(func(h H, err error) {
		if completed {
			return
		}
		completed = true
		c.complete(key, h, err)
	})
}

func (c *Cache[H]) complete(key Key, h H, err error) {
	waiters := c.loading[key]
	delete(c.loading, key)

	if err != nil {
		c.stats.Failures++
		lerr := &LoadError{Kind: c.kind, Key: key, Err: err}
		c.log.Warn("load failed", zap.String("key", key.Short()), zap.Error(err))
		var zero H
		for _, w := range waiters {
			w(zero, lerr)
		}
		return
	}

	c.entries[key] = &entry[H]{handle: h, refs: len(waiters)}
	c.log.Debug("loaded", zap.String("key", key.Short()), zap.Int("refs", len(waiters)))
	for _, w := range waiters {
		w(h, nil)
	}
}

// AcquireNow is Acquire for loaders that finish synchronously.
func (c *Cache[H]) AcquireNow(key Key, load func() (H, error)) (H, error) {
	var (
		handle H
		err    error
		done   bool
	)
	c.Acquire(key, func(complete func(H, error)) {
		complete(load())
	}, func(h H, e error) {
		handle, err, done = h, e, true
	})
	if !done {
		var zero H
		return zero, fmt.Errorf("%s %s is still loading", c.kind, key.Short())
	}
	return handle, err
}

// Release drops one reference. When the count reaches zero the entry is
// removed and returned with last set; the caller then frees the GPU object
// exactly once. The cache itself never frees anything.
func (c *Cache[H]) Release(key Key) (handle H, last bool, err error) {
	e, ok := c.entries[key]
	if !ok {
		return handle, false, fmt.Errorf("%w: %s %s", ErrNotCached, c.kind, key.Short())
	}
	e.refs--
	if e.refs > 0 {
		return e.handle, false, nil
	}
	delete(c.entries, key)
	c.stats.Evicted++
	c.log.Debug("evicted", zap.String("key", key.Short()))
	return e.handle, true, nil
}

// Refs returns the reference count of a live entry, or 0.
func (c *Cache[H]) Refs(key Key) int {
	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Loading reports whether a load for key is in flight.
func (c *Cache[H]) Loading(key Key) bool {
	_, ok := c.loading[key]
	return ok
}

// Len returns the number of live entries.
func (c *Cache[H]) Len() int { return len(c.entries) }

// Keys returns the live keys in sorted order.
func (c *Cache[H]) Keys() []Key {
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Stats returns a snapshot of the traffic counters.
func (c *Cache[H]) Stats() Stats { return c.stats }
