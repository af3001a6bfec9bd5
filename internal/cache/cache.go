// Package cache is the in-process cache shared by the store adapter, the code resolver and the
// stylesheet generator.
//
// Keys are spread over shards (xxhash) so population and invalidation of one key never take a lock
// on the whole cache. Every key carries a generation: Invalidate bumps it, and a value loaded under
// an older generation is returned to its caller but never stored. A read that starts after an
// invalidation therefore cannot observe a value computed before it, which is the only freshness
// guarantee callers rely on; TTL is a memory knob.
package cache

import (
	"brandtheme/internal/config"
	"brandtheme/internal/metrics"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const defaultShards = 16

// LoadFunc computes the value for a key on a miss. It must be idempotent: concurrent misses may
// run it more than once for the same generation.
type LoadFunc[V any] func(ctx context.Context) (V, error)

type Cache[V any] struct {
	name    string
	enabled bool
	shards  []*shard
	sf      singleflight.Group
}

type shard struct {
	mu    sync.Mutex
	items *gocache.Cache
	gens  map[string]uint64
	epoch uint64
}

type generation struct {
	epoch uint64
	gen   uint64
}

type Option func(*options)

type options struct {
	ttl      time.Duration
	disabled bool
	shards   int
}

// WithTTL expires entries after ttl. Zero (the default) keeps entries until invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// Disabled turns GetOrLoad into a pass-through to the loader.
func Disabled(disabled bool) Option {
	return func(o *options) { o.disabled = disabled }
}

func WithShards(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shards = n
		}
	}
}

// New creates a cache; name labels its metrics.
func New[V any](name string, opts ...Option) *Cache[V] {
	o := options{shards: defaultShards}
	for _, opt := range opts {
		opt(&o)
	}
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if o.ttl > 0 {
		expiration = o.ttl
		cleanup = o.ttl
	}
	c := &Cache[V]{
		name:    name,
		enabled: !o.disabled,
		shards:  make([]*shard, o.shards),
	}
	for i := range c.shards {
		c.shards[i] = &shard{items: gocache.New(expiration, cleanup), gens: make(map[string]uint64)}
	}
	return c
}

func (c *Cache[V]) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)%uint64(len(c.shards))]
}

// Get returns the cached value for key, if any.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.enabled {
		return zero, false
	}
	v, ok := c.shardFor(key).items.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	return typed, ok
}

// GetOrLoad returns the cached value for key or populates it with load. Concurrent misses for the
// same key and generation share one load, which is not cancelled when the caller that started it
// goes away. Errors are returned and never cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	if !c.enabled {
		return load(ctx)
	}
	if v, ok := c.Get(key); ok {
		metrics.CacheRequests.WithLabelValues(c.name, "hit").Inc()
		return v, nil
	}
	metrics.CacheRequests.WithLabelValues(c.name, "miss").Inc()

	s := c.shardFor(key)
	g := s.generation(key)
	flight := key + "\x00" + strconv.FormatUint(g.epoch, 10) + "." + strconv.FormatUint(g.gen, 10)
	// The shared load outlives any single caller; each caller stops waiting on its own ctx.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(flight, func() (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		s.storeIfCurrent(key, v, g)
		return v, nil
	})
	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Invalidate drops key and fences out any load that started before this call.
func (c *Cache[V]) Invalidate(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	s.gens[key]++
	s.items.Delete(key)
	s.mu.Unlock()
	metrics.CacheInvalidations.WithLabelValues(c.name, "key").Inc()
}

// Clear drops every key, one shard at a time.
func (c *Cache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.epoch++
		s.gens = make(map[string]uint64)
		s.items.Flush()
		s.mu.Unlock()
	}
	metrics.CacheInvalidations.WithLabelValues(c.name, "all").Inc()
}

// Len reports the number of live entries.
func (c *Cache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.items.ItemCount()
	}
	return n
}

func (s *shard) generation(key string) generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation{epoch: s.epoch, gen: s.gens[key]}
}

func (s *shard) storeIfCurrent(key string, v any, g generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != g.epoch || s.gens[key] != g.gen {
		return
	}
	s.items.Set(key, v, gocache.DefaultExpiration)
}

// FromSettings maps the process cache settings to options.
func FromSettings(s config.Settings) []Option {
	return []Option{Disabled(!s.EnableCache), WithTTL(s.CacheTTL)}
}
