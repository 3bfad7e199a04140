// Package memo memoizes upstream lookups by their exact, normalized arguments.
package memo

import (
	"context"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"finance-dashboard/internal/logger"
)

// Clock supplies the time recorded as an entry's FetchedAt.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Policy decides when a stored entry stops being served.
// A zero TTL keeps entries for the lifetime of the process.
type Policy struct {
	TTL time.Duration
}

// NeverExpire is the default policy.
func NeverExpire() Policy { return Policy{} }

// ExpireAfter drops entries older than ttl.
func ExpireAfter(ttl time.Duration) Policy { return Policy{TTL: ttl} }

func (p Policy) expired(fetchedAt, now time.Time) bool {
	return p.TTL > 0 && now.Sub(fetchedAt) > p.TTL
}

// Entry is one memoized result.
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

type options struct {
	clock  Clock
	policy Policy
}

// Option configures a Cache.
type Option func(*options)

// WithClock injects the clock used for FetchedAt and expiry checks.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithPolicy sets the invalidation policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// Cache is a read-through memo table keyed by normalized argument strings.
// It is safe for concurrent use; a miss triggers exactly one fetch per key
// no matter how many callers are waiting on it.
type Cache[V any] struct {
	name   string
	items  *gocache.Cache
	group  singleflight.Group
	clock  Clock
	policy Policy
}

// New creates an empty cache. name only appears in logs.
func New[V any](name string, opts ...Option) *Cache[V] {
	o := options{clock: SystemClock, policy: NeverExpire()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		name: name,
		// expiry is decided by Policy against the injected clock, not by go-cache
		items:  gocache.New(gocache.NoExpiration, 0),
		clock:  o.clock,
		policy: o.policy,
	}
}

// Key normalizes an argument tuple into a single cache key. Parts are quoted
// so ("a|b", "c") and ("a", "b|c") never collide.
func Key(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = strconv.Quote(p)
	}
	return strings.Join(quoted, "|")
}

// GetOrFetch returns the stored value for key, or calls fetch and stores its
// result. Errors are returned to every waiting caller and never stored.
//
// The shared fetch runs on a context that ignores caller cancellation. A
// cancelled caller stops waiting and returns ctx.Err(). fetch must bound its
// own duration.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	var zero V
	if e, ok := c.lookup(key); ok {
		logger.Debug(ctx, "Memo hit", "cache", c.name, "key", key)
		return e.Value, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// another caller may have filled the slot while we queued
		if e, ok := c.lookup(key); ok {
			return e.Value, nil
		}
		logger.Debug(fetchCtx, "Memo miss", "cache", c.name, "key", key)
		val, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.items.Set(key, Entry[V]{Value: val, FetchedAt: c.clock.Now()}, gocache.NoExpiration)
		return val, nil
	})

	select {
	case <-ctx.Done():
		logger.Debug(ctx, "Memo wait abandoned", "cache", c.name, "key", key)
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			logger.Debug(ctx, "Memo fetch shared", "cache", c.name, "key", key, "entries", c.Len())
		}
		val, _ := res.Val.(V)
		return val, nil
	}
}

// Entry returns the stored entry for key if it is still valid under the policy.
func (c *Cache[V]) Entry(key string) (Entry[V], bool) {
	return c.lookup(key)
}

// Invalidate drops a single key.
func (c *Cache[V]) Invalidate(key string) {
	c.items.Delete(key)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.items.Flush()
}

// Len counts stored entries, expired ones included until they are next read.
func (c *Cache[V]) Len() int {
	return c.items.ItemCount()
}

func (c *Cache[V]) lookup(key string) (Entry[V], bool) {
	raw, ok := c.items.Get(key)
	if !ok {
		return Entry[V]{}, false
	}
	e, ok := raw.(Entry[V])
	if !ok {
		return Entry[V]{}, false
	}
	if c.policy.expired(e.FetchedAt, c.clock.Now()) {
		c.items.Delete(key)
		return Entry[V]{}, false
	}
	return e, true
}
