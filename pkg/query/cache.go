package query

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/metrics"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// StaleNever keeps an entry fresh until it is invalidated
const StaleNever = time.Duration(math.MaxInt64)

// EventType describes what happened to a cached key
type EventType int

const (
	EventUpdated EventType = iota
	EventInvalidated
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventUpdated:
		return "updated"
	case EventInvalidated:
		return "invalidated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers
type Event struct {
	Key  Key
	Type EventType
}

// State is a snapshot of one entry
type State struct {
	HasData   bool
	Stale     bool
	UpdatedAt time.Time
}

type entry struct {
	data      interface{}
	hasData   bool
	stale     bool
	gen       uint64
	updatedAt time.Time
}

type options struct {
	staleTime  time.Duration
	retry      int
	retryDelay time.Duration
}

// Option tunes a single Fetch
type Option func(*options)

// WithStaleTime sets how long fetched data is served without refetching
func WithStaleTime(d time.Duration) Option {
	return func(o *options) { o.staleTime = d }
}

// WithRetry sets how many extra attempts follow a failed fetch
func WithRetry(n int, delay time.Duration) Option {
	return func(o *options) {
		o.retry = n
		o.retryDelay = delay
	}
}

// Cache is a keyed store of server resources. Writes never mutate cached
// data: they invalidate keys and the next Fetch goes back to the server.
type Cache struct {
	mu        sync.Mutex
	entries   map[Key]*entry
	observers map[int]observer
	nextID    int
	epoch     uint64 // bumped by Remove and Clear

	group    singleflight.Group
	defaults options
	metrics  *metrics.Metrics
	now      func() time.Time
}

type observer struct {
	key Key // empty means every key
	fn  func(Event)
}

// New creates a Cache. defaultStaleTime applies to fetches without WithStaleTime.
func New(defaultStaleTime time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		entries:   make(map[Key]*entry),
		observers: make(map[int]observer),
		defaults:  options{staleTime: defaultStaleTime, retryDelay: time.Second},
		metrics:   m,
		now:       time.Now,
	}
}

// Fetch returns the cached value for key when it is fresh, otherwise runs
// fetch. Concurrent fetches of one key share a single call. A failed fetch
// keeps whatever was cached before.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error), opts ...Option) (T, error) {
	v, err := c.fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query: cached value for %s is %T", key, v)
	}
	return typed, nil
}

// Get peeks at the cached value regardless of staleness
func Get[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok || !e.hasData {
		return zero, false
	}
	typed, ok := e.data.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func (c *Cache) fetch(ctx context.Context, key Key, fn func(context.Context) (interface{}, error), opts ...Option) (interface{}, error) {
	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}

	if v, ok := c.fresh(key, o.staleTime); ok {
		c.metrics.CacheHit(key.Resource())
		return v, nil
	}
	c.metrics.CacheMiss(key.Resource())

	v, err, shared := c.group.Do(string(key), func() (interface{}, error) {
		gen, epoch := c.generation(key)

		var lastErr error
		for attempt := 0; attempt <= o.retry; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(o.retryDelay):
				}
			}

			v, err := fn(ctx)
			if err == nil {
				c.store(key, v, gen, epoch)
				return v, nil
			}
			lastErr = err
			logger.Debug("Query fetch failed", "key", key, "attempt", attempt+1, "error", err)
		}

		c.metrics.CacheFetchError(key.Resource())
		return nil, lastErr
	})
	if shared {
		logger.Debug("Query fetch shared", "key", key)
	}
	return v, err
}

func (c *Cache) fresh(key Key, staleTime time.Duration) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.hasData || e.stale || staleTime <= 0 {
		return nil, false
	}
	if staleTime != StaleNever && c.now().Sub(e.updatedAt) >= staleTime {
		return nil, false
	}
	return e.data, true
}

func (c *Cache) generation(key Key) (gen, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.gen, c.epoch
	}
	return 0, c.epoch
}

// store saves fetched data. An invalidation that landed while the fetch was
// in flight keeps the entry stale; a Remove or Clear drops the result.
func (c *Cache) store(key Key, v interface{}, gen, epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		logger.Debug("Query result dropped after clear", "key", key)
		return
	}
	e := c.entry(key)
	e.data = v
	e.hasData = true
	e.updatedAt = c.now()
	e.stale = e.gen != gen
	fns := c.observersFor(key)
	c.mu.Unlock()

	notify(fns, Event{Key: key, Type: EventUpdated})
}

// Set seeds key with data, as if it had just been fetched
func (c *Cache) Set(key Key, v interface{}) {
	c.mu.Lock()
	gen, epoch := c.entry(key).gen, c.epoch
	c.mu.Unlock()
	c.store(key, v, gen, epoch)
}

// Invalidate marks keys stale so the next Fetch of each one refetches.
// Invalidating is idempotent; unknown keys are recorded as stale too.
func (c *Cache) Invalidate(keys ...Key) {
	for _, key := range lo.Uniq(keys) {
		c.mu.Lock()
		e := c.entry(key)
		e.stale = true
		e.gen++
		fns := c.observersFor(key)
		c.mu.Unlock()

		c.metrics.CacheInvalidated(key.Resource())
		logger.Debug("Query invalidated", "key", key)
		notify(fns, Event{Key: key, Type: EventInvalidated})
	}
}

// InvalidatePrefix invalidates every known key under prefix and returns them
func (c *Cache) InvalidatePrefix(prefix Key) []Key {
	c.mu.Lock()
	var keys []Key
	for key := range c.entries {
		if key.HasPrefix(prefix) {
			keys = append(keys, key)
		}
	}
	c.mu.Unlock()

	c.Invalidate(keys...)
	return keys
}

// IsStale reports whether the next Fetch of key will go to the server
// regardless of stale time. Keys never seen are stale.
func (c *Cache) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return !ok || !e.hasData || e.stale
}

// State returns a snapshot of key
func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}
	}
	return State{HasData: e.hasData, Stale: e.stale, UpdatedAt: e.updatedAt}
}

// Remove drops key entirely
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.epoch++
	fns := c.observersFor(key)
	c.mu.Unlock()

	if existed {
		notify(fns, Event{Key: key, Type: EventRemoved})
	}
}

// Clear drops every entry, used on logout
func (c *Cache) Clear() {
	c.mu.Lock()
	keys := lo.Keys(c.entries)
	c.epoch++
	c.mu.Unlock()

	for _, key := range keys {
		c.Remove(key)
	}
}

// Subscribe calls fn for every event on key and returns the unsubscribe func
func (c *Cache) Subscribe(key Key, fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = observer{key: key, fn: fn}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// SubscribeAll calls fn for every event on every key
func (c *Cache) SubscribeAll(fn func(Event)) func() {
	return c.Subscribe("", fn)
}

// entry returns the entry for key, creating it. Callers hold c.mu.
func (c *Cache) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// observersFor collects callbacks for key. Callers hold c.mu.
func (c *Cache) observersFor(key Key) []func(Event) {
	var fns []func(Event)
	for _, o := range c.observers {
		if o.key == "" || o.key == key {
			fns = append(fns, o.fn)
		}
	}
	return fns
}

func notify(fns []func(Event), ev Event) {
	for _, fn := range fns {
		fn(ev)
	}
}
