package lang

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/umbra/log"
)

// Cache memoizes parsed templates by source text.
//
// Failed parses are never stored, so a malformed template is re-parsed (and
// fails again) on every lookup; use [Cache.Render] to fall back to the raw
// text instead of retrying.
//
// A Cache is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	capacity  int
	ll        *list.List
	items     map[uint64]*list.Element
	stats     Stats
	parseOpts []Option
	logger    log.Logger
}

// Stats counts cache activity since creation or the last [Cache.Clear].
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// entry is a cached script keyed by the hash of its source.
type entry struct {
	key    uint64
	script *Script
}

// CacheOption configures a [Cache].
type CacheOption func(*Cache)

// WithCapacity bounds the number of cached templates. When full, the least
// recently used template is evicted. Values below 1 leave the cache
// unbounded.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		c.capacity = max(n, 0)
	}
}

// WithParseOptions sets the options used to parse templates on a miss.
func WithParseOptions(opts ...Option) CacheOption {
	return func(c *Cache) {
		c.parseOpts = append(c.parseOpts, opts...)
	}
}

// WithCacheLogger sets the logger for cache activity. Parse failures in
// [Cache.Render] are logged at warn level.
func WithCacheLogger(logger log.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache returns an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		ll:    list.New(),
		items: make(map[uint64]*list.Element),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the parsed template for source, parsing and storing it on a
// miss. A hit returns the same *Script instance every time.
func (c *Cache) Get(ctx context.Context, source string) (*Script, error) {
	key := xxh3.HashString(source)

	s, collision := c.lookup(key, source)

	c.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", s != nil),
		slog.Bool("collision", collision),
	)

	if s != nil {
		return s, nil
	}

	s, err := Parse(ctx, source, c.parseOpts...)
	if err != nil {
		return nil, err
	}

	// A different template already owns this hash; serve it uncached.
	if collision {
		return s, nil
	}

	return c.store(key, s), nil
}

// Render renders source with the given providers. If source does not parse,
// the failure is logged and source is returned verbatim.
func (c *Cache) Render(
	ctx context.Context,
	source string,
	functions Functions,
	placeholders Placeholders,
) string {
	s, err := c.Get(ctx, source)
	if err != nil {
		attrs := []slog.Attr{slog.String("source", source)}

		var pe *ParseError
		if errors.As(err, &pe) {
			attrs = append(attrs, slog.Any("error", pe))
		} else {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		c.logger.WarnContext(ctx, "template parse failed", attrs...)

		return source
	}

	return s.Evaluate(functions, placeholders)
}

// Remove evicts source from the cache, reporting whether it was present.
func (c *Cache) Remove(source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := xxh3.HashString(source)

	el, ok := c.items[key]
	if !ok || el.Value.(*entry).script.source != source {
		return false
	}

	c.ll.Remove(el)
	delete(c.items, key)

	return true
}

// Clear removes every entry and resets the statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[uint64]*list.Element)
	c.stats = Stats{}
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ll.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// lookup returns the cached script for key if its source matches. collision
// reports that key is held by a different source.
func (c *Cache) lookup(key uint64, source string) (s *Script, collision bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++

		return nil, false
	}

	cached := el.Value.(*entry).script
	if cached.source != source {
		c.stats.Misses++

		return nil, true
	}

	c.stats.Hits++
	c.ll.MoveToFront(el)

	return cached, false
}

// store inserts s unless another goroutine stored the same template first,
// in which case the existing script is returned.
func (c *Cache) store(key uint64, s *Script) *Script {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)

		if cached := el.Value.(*entry).script; cached.source == s.source {
			return cached
		}

		return s
	}

	if c.capacity > 0 && c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	c.items[key] = c.ll.PushFront(&entry{key: key, script: s})

	return s
}

// evictLocked removes the least recently used entry. c.mu must be held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}

	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	c.stats.Evictions++
}
