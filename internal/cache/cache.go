// Package cache wraps the key-value store with a TTL'd report cache.
//
// Caching is an optimization, never a correctness dependency: a failed read
// degrades to a miss and a failed write is logged and swallowed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/an0763229796-cpu/AlphaDrop/internal/apperr"
	"github.com/an0763229796-cpu/AlphaDrop/internal/kvstore"
)

// DefaultTTL is how long a cached report stays servable.
const DefaultTTL = 24 * time.Hour

type envelope struct {
	Data     json.RawMessage `json:"data"`
	StoredAt int64           `json:"storedAt"` // unix milliseconds
}

// Cache stores one value of type T per case-normalized name under a fixed
// key namespace. Distinct report shapes use distinct prefixes so they never
// collide on the same project name.
type Cache[T any] struct {
	store  kvstore.Store
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a cache over store using the given key prefix and TTL.
// A non-positive ttl falls back to DefaultTTL.
func New[T any](store kvstore.Store, prefix string, ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{store: store, prefix: prefix, ttl: ttl, now: time.Now}
}

func (c *Cache[T]) key(name string) string {
	return c.prefix + ":" + strings.ToLower(strings.TrimSpace(name))
}

// Get returns the cached value for name when present and younger than the
// TTL. Expired entries are treated as absent and left in place; the next
// Put overwrites them.
func (c *Cache[T]) Get(ctx context.Context, name string) (T, bool) {
	var zero T

	raw, err := c.store.Get(ctx, c.key(name))
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			slog.Warn("cache read failed, treating as miss",
				slog.String("key", c.key(name)), slog.String("error", err.Error()))
		}
		return zero, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		slog.Warn("cache entry corrupt, treating as miss",
			slog.String("key", c.key(name)), slog.String("error", err.Error()))
		return zero, false
	}
	if c.now().UnixMilli()-env.StoredAt >= c.ttl.Milliseconds() {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		slog.Warn("cache payload undecodable, treating as miss",
			slog.String("key", c.key(name)), slog.String("error", err.Error()))
		return zero, false
	}
	return v, true
}

// Put stores v under name stamped with the current time.
func (c *Cache[T]) Put(ctx context.Context, name string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode failed, result not persisted",
			slog.String("key", c.key(name)), slog.String("error", err.Error()))
		return
	}
	raw, err := json.Marshal(envelope{Data: data, StoredAt: c.now().UnixMilli()})
	if err != nil {
		slog.Warn("cache envelope encode failed, result not persisted",
			slog.String("key", c.key(name)), slog.String("error", err.Error()))
		return
	}
	if err := c.store.Set(ctx, c.key(name), raw); err != nil {
		slog.Warn("cache write failed, result not persisted",
			slog.String("key", c.key(name)), slog.String("error", err.Error()))
	}
}
