// Package cache provides a TTL cache with request coalescing: concurrent
// callers awaiting the same uncached key share a single fetch. Each cache
// instance is one namespace; the engine keeps separate instances for
// taxonomies, attributes and match results.
package cache

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// State describes a cache key's lifecycle. Stale entries hold old data but
// are treated as empty for read purposes.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateFresh   State = "fresh"
	StateStale   State = "stale"
)

// FetchFunc produces the value for a key on a cache miss. It is invoked at
// most once per in-flight key regardless of how many callers are waiting.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	data      T
	fetchedAt time.Time
	loading   bool
	err       error
	// done is closed exactly once when the in-flight fetch completes; it is
	// the one-shot broadcast every waiter blocks on.
	done chan struct{}
}

// Cache is a concurrency-safe TTL cache for a single namespace. The zero
// value is not usable; construct with New.
type Cache[T any] struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]*entry[T]
}

func New[T any](name string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		name:    name,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry[T]),
	}
}

// SetClock replaces the time source. Test hook; not safe to call once the
// cache is shared.
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Cache[T]) fresh(e *entry[T]) bool {
	return !e.loading && e.err == nil && c.now().Sub(e.fetchedAt) < c.ttl
}

// Get returns the cached value only when the entry exists and is within its
// TTL. Staleness is detected lazily here; nothing evicts proactively.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	e, ok := c.entries[key]
	if !ok || !c.fresh(e) {
		return zero, false
	}
	return e.data, true
}

// GetStale returns the last completed value even past its TTL. Loading or
// never-fetched keys have nothing to return.
func (c *Cache[T]) GetStale(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	e, ok := c.entries[key]
	if !ok || e.loading || e.err != nil {
		return zero, false
	}
	return e.data, true
}

// State reports the key's lifecycle state so callers can distinguish
// "still loading" from "loaded" from "nothing there".
func (c *Cache[T]) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	switch {
	case !ok:
		return StateEmpty
	case e.loading:
		return StateLoading
	case c.fresh(e):
		return StateFresh
	default:
		return StateStale
	}
}

// Ensure returns the fresh cached value, or joins the in-flight fetch for
// the key, or starts one. Exactly one fetch runs per key at a time; every
// waiter observes that fetch's result. A failed fetch reverts the key to
// empty so the next caller retries instead of being stuck with a cached
// error. The fetch itself is detached from the initiating caller's
// cancellation: a caller abandoning its request does not cancel the fetch
// for the other waiters, and the result still lands in the cache.
func (c *Cache[T]) Ensure(ctx context.Context, key string, fetch FetchFunc[T]) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if c.fresh(e) {
			data := e.data
			c.mu.Unlock()
			return data, nil
		}
		if e.loading {
			c.mu.Unlock()
			return c.await(ctx, e)
		}
	}

	e := &entry[T]{loading: true, done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	go c.run(context.WithoutCancel(ctx), key, e, fetch)
	return c.await(ctx, e)
}

func (c *Cache[T]) run(ctx context.Context, key string, e *entry[T], fetch FetchFunc[T]) {
	data, err := fetch(ctx)

	c.mu.Lock()
	if err != nil {
		e.err = err
		// revert to empty: the next Ensure refetches
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		log.Debugf("cache %s: fetch for key %q failed: %v", c.name, key, err)
	} else {
		e.data = data
		e.fetchedAt = c.now()
		e.loading = false
	}
	c.mu.Unlock()

	close(e.done)
}

func (c *Cache[T]) await(ctx context.Context, e *entry[T]) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-e.done:
	}
	// e is never mutated after done closes; the close gives us the needed
	// happens-before edge.
	if e.err != nil {
		return zero, e.err
	}
	return e.data, nil
}

// Invalidate forcibly evicts one key. An in-flight fetch still completes and
// notifies its waiters, but its result is discarded from the map.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear evicts every key in the namespace.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[T])
}
