// Package cache keeps parsed datasets in memory, bounded by a maximum
// number of entries and by how long an entry may go unused.
package cache

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// LoadFunc loads a dataset missing from the cache.
type LoadFunc func(ctx context.Context) (tabular.Dataset, error)

// Cache is a least-recently-used dataset cache with access-based expiry.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	lru        *list.List
	flight     singleflight.Group
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	metrics    *Metrics
	logger     *slog.Logger
}

type entry struct {
	key        string
	value      tabular.Dataset
	lastAccess time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics records hits, misses and evictions.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithLogger logs evictions and loads.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache holding at most maxEntries datasets, each expiring
// once unused for longer than ttl. A maxEntries below 1 or a ttl of 0
// disables the respective bound.
func New(maxEntries int, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the dataset stored under key and marks it as used.
func (c *Cache) Get(key string) (tabular.Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.metrics.miss()
		return nil, false
	}
	e := elem.Value.(*entry)
	now := c.now()
	if c.expired(e, now) {
		c.removeLocked(elem, "expired")
		c.metrics.miss()
		return nil, false
	}

	e.lastAccess = now
	c.lru.MoveToFront(elem)
	c.metrics.hit()
	return e.value, true
}

// Put stores a dataset under key, replacing any previous one, and evicts
// the least recently used entries beyond capacity.
func (c *Cache) Put(key string, value tabular.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		e.value = value
		e.lastAccess = now
		c.lru.MoveToFront(elem)
		return
	}

	c.entries[key] = c.lru.PushFront(&entry{key: key, value: value, lastAccess: now})
	for c.maxEntries > 0 && c.lru.Len() > c.maxEntries {
		c.removeLocked(c.lru.Back(), "capacity")
	}
}

// GetOrLoad returns the cached dataset for key, loading and storing it on
// a miss. Concurrent loads of the same key share a single call to load.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load LoadFunc) (tabular.Dataset, error) {
	if d, ok := c.Get(key); ok {
		return d, nil
	}

	v, err, shared := c.flight.Do(key, func() (interface{}, error) {
		start := c.now()
		d, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(key, d)
		c.logger.Debug("dataset loaded",
			slog.String("key", key),
			slog.Int("rows", d.Size()),
			slog.Duration("duration", c.now().Sub(start)))
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("dataset load shared", slog.String("key", key))
	}
	return v.(tabular.Dataset), nil
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge removes all entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Sweep removes all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*entry), now) {
			c.removeLocked(elem, "expired")
			removed++
		}
		elem = prev
	}
	return removed
}

// Run sweeps the cache every interval until ctx is done.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

func (c *Cache) expired(e *entry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.lastAccess) > c.ttl
}

func (c *Cache) removeLocked(elem *list.Element, reason string) {
	e := elem.Value.(*entry)
	c.lru.Remove(elem)
	delete(c.entries, e.key)
	c.metrics.evict()
	c.logger.Debug("dataset evicted", slog.String("key", e.key), slog.String("reason", reason))
}
