// Package cache provides the in-process result cache shared by every outbound
// catalog lookup. Entries expire by TTL on read and are otherwise only replaced
// by a newer value under the same key or dropped by Clear.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRequestTTL is the TTL for search and list lookups (1 hour)
	DefaultRequestTTL = time.Hour
	// DefaultBookTTL is the TTL for book detail lookups (24 hours)
	DefaultBookTTL = 24 * time.Hour
	// DefaultMovieTTL is the TTL for movie detail lookups (24 hours)
	DefaultMovieTTL = 24 * time.Hour

	keySeparator = "|"
)

// FetchFunc represents a function that computes a value on a cache miss
type FetchFunc[T any] func() (T, error)

// Observer receives hit/miss notifications, e.g. for metrics.
type Observer interface {
	CacheHit(op string)
	CacheMiss(op string)
}

type entry struct {
	op       string
	value    any
	storedAt time.Time
	size     int
}

// Cache is a time-bounded memo of keyed lookups. It is safe for concurrent use.
//
// The lock is held only while checking for and storing an entry, never while a
// value is being computed. Without WithSingleFlight, concurrent misses on the
// same key each run their compute function.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	hits     int64
	misses   int64
	now      func() time.Time
	group    *singleflight.Group
	observer Observer
}

// Option is a functional option for configuring the Cache.
type Option func(*Cache)

// WithClock sets the time source used for storedAt and TTL checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSingleFlight makes concurrent misses on the same key share one compute call.
func WithSingleFlight() Option {
	return func(c *Cache) {
		c.group = &singleflight.Group{}
	}
}

// WithObserver registers an Observer for hits and misses.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key for an operation and its arguments.
// Positional argument order is significant, keyword arguments are sorted by name.
func Key(op string, args []any, kwargs map[string]any) string {
	parts := make([]string, 0, 1+len(args)+len(kwargs))
	parts = append(parts, op)
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	for _, name := range slices.Sorted(maps.Keys(kwargs)) {
		parts = append(parts, name+":"+fmt.Sprint(kwargs[name]))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, keySeparator)))
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the value stored for (op, args, kwargs) if it is younger
// than ttl, otherwise it runs compute and stores the result.
// Errors from compute are returned as-is and never stored.
func GetOrCompute[T any](c *Cache, op string, args []any, kwargs map[string]any, ttl time.Duration, compute FetchFunc[T]) (T, error) {
	if c == nil {
		return compute()
	}

	key := Key(op, args, kwargs)
	if cached, ok := c.lookup(key, op, ttl); ok {
		if value, ok := as[T](cached); ok {
			return value, nil
		}
		slog.Warn("Cached value has unexpected type, recomputing", "op", op)
	}

	if c.group == nil {
		return computeAndStore(c, key, op, compute)
	}

	leader := false
	shared, err, _ := c.group.Do(key, func() (any, error) {
		leader = true
		// A caller that finished while we waited for the group may already have stored it
		if cached, ok := c.peek(key, ttl); ok {
			return cached, nil
		}
		return computeAndStore(c, key, op, compute)
	})
	if err != nil && !leader && isContextError(err) {
		// The leader's request ended; this caller's context decides for itself.
		return computeAndStore(c, key, op, compute)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := as[T](shared)
	return value, nil
}

// Memoize1 wraps fn so that calls are answered from the cache under op.
func Memoize1[A, T any](c *Cache, op string, ttl time.Duration, fn func(context.Context, A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, a A) (T, error) {
		return GetOrCompute(c, op, []any{a}, nil, ttl, func() (T, error) {
			return fn(ctx, a)
		})
	}
}

// Memoize2 is Memoize1 for two-argument functions.
func Memoize2[A, B, T any](c *Cache, op string, ttl time.Duration, fn func(context.Context, A, B) (T, error)) func(context.Context, A, B) (T, error) {
	return func(ctx context.Context, a A, b B) (T, error) {
		return GetOrCompute(c, op, []any{a, b}, nil, ttl, func() (T, error) {
			return fn(ctx, a, b)
		})
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func computeAndStore[T any](c *Cache, key, op string, compute FetchFunc[T]) (T, error) {
	value, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	c.store(key, op, value)
	return value, nil
}

func (c *Cache) lookup(key, op string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	fresh := ok && c.now().Sub(e.storedAt) < ttl
	if fresh {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if fresh {
		slog.Debug("Cache hit", "op", op)
		if c.observer != nil {
			c.observer.CacheHit(op)
		}
		return e.value, true
	}

	if ok {
		slog.Debug("Cache expired", "op", op, "age", c.now().Sub(e.storedAt))
	} else {
		slog.Debug("Cache miss", "op", op)
	}
	if c.observer != nil {
		c.observer.CacheMiss(op)
	}
	return nil, false
}

// peek checks for a fresh entry without touching the hit/miss counters.
func (c *Cache) peek(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key, op string, value any) {
	size := estimateSize(value)

	c.mu.Lock()
	c.entries[key] = entry{
		op:       op,
		value:    value,
		storedAt: c.now(),
		size:     len(key) + size,
	}
	c.mu.Unlock()
}

// Stats summarizes the cache contents.
type Stats struct {
	TotalEntries   int            `json:"total_entries"`
	ByType         map[string]int `json:"by_type"`
	SizeEstimateKB float64        `json:"size_estimate_kb"`
	Hits           int64          `json:"hits"`
	Misses         int64          `json:"misses"`
}

// Stats reports entry counts grouped by operation name and an estimated size.
// Expired entries that have not been overwritten are still counted.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		TotalEntries: len(c.entries),
		ByType:       make(map[string]int),
		Hits:         c.hits,
		Misses:       c.misses,
	}

	var bytes int
	for _, e := range c.entries {
		stats.ByType[e.op]++
		bytes += e.size
	}
	stats.SizeEstimateKB = math.Round(float64(bytes)/1024*100) / 100

	return stats
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]entry)
	slog.Info("Cache cleared", "entries_removed", removed)
	return removed
}

func as[T any](v any) (T, bool) {
	if v == nil {
		var zero T
		return zero, true
	}
	typed, ok := v.(T)
	return typed, ok
}

func estimateSize(value any) int {
	data, err := json.Marshal(value)
	if err != nil {
		return len(fmt.Sprint(value))
	}
	return len(data)
}
