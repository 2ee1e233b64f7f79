package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/khonloi/gash-storefront/internal/store"
)

// SnapshotStore is the subset of the persisted state store the cache needs.
type SnapshotStore interface {
	SaveSnapshot(key string, payload []byte, at time.Time) error
	Snapshot(key string) ([]byte, time.Time, error)
	DeleteSnapshot(key string) error
}

// Cache layers a freshness window over the persisted snapshot store. Reads
// are collapsed per key so concurrent misses trigger a single fetch.
type Cache struct {
	store SnapshotStore
	fresh time.Duration
	sfg   singleflight.Group
	now   func() time.Time
}

func New(st SnapshotStore, freshness time.Duration) *Cache {
	return &Cache{
		store: st,
		fresh: freshness,
		now:   time.Now,
	}
}

// Options control one read.
type Options struct {
	// ForceRefresh skips the freshness short-circuit and always fetches.
	ForceRefresh bool
	// Background marks a refresh nobody is waiting on; fetch failures fall
	// back to the last complete snapshot instead of surfacing.
	Background bool
}

// Read returns the list for key, serving a fresh snapshot without a network
// call when allowed, and otherwise fetching through fetch. A snapshot is
// only ever trusted as a fallback if every item satisfies complete; a
// snapshot failing that predicate is discarded rather than served broken.
func Read[T any](ctx context.Context, c *Cache, key string, opts Options, fetch func(ctx context.Context) ([]T, error), complete func(T) bool) ([]T, error) {
	cached, cachedAt, haveCached := load[T](c, key, complete)

	if haveCached && !opts.ForceRefresh && c.now().Sub(cachedAt) < c.fresh {
		return cached, nil
	}

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		items, errFetch := fetch(ctx)
		if errFetch != nil {
			return nil, errFetch
		}
		c.save(key, items)
		return items, nil
	})
	if err != nil {
		if opts.Background && haveCached {
			return cached, nil
		}
		return nil, fmt.Errorf("fetch %q: %w", key, err)
	}

	return v.([]T), nil
}

// Cached returns the last stored snapshot for key if it passes the
// completeness predicate, regardless of age. Callers use it to keep showing
// the previous value while a refresh is in flight.
func Cached[T any](c *Cache, key string, complete func(T) bool) ([]T, bool) {
	items, _, ok := load[T](c, key, complete)
	return items, ok
}

// Invalidate drops the snapshot for key.
func (c *Cache) Invalidate(key string) {
	if err := c.store.DeleteSnapshot(key); err != nil {
		slog.Warn("cache invalidate failed", "key", key, "error", err)
	}
}

func load[T any](c *Cache, key string, complete func(T) bool) ([]T, time.Time, bool) {
	payload, savedAt, err := c.store.Snapshot(key)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, time.Time{}, false
	}
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return nil, time.Time{}, false
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		slog.Warn("cache snapshot corrupt, discarding", "key", key, "error", err)
		c.Invalidate(key)
		return nil, time.Time{}, false
	}

	if complete != nil {
		for _, item := range items {
			if !complete(item) {
				c.Invalidate(key)
				return nil, time.Time{}, false
			}
		}
	}

	return items, savedAt, true
}

func (c *Cache) save(key string, items any) {
	payload, err := json.Marshal(items)
	if err != nil {
		slog.Warn("cache snapshot marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.SaveSnapshot(key, payload, c.now()); err != nil {
		slog.Warn("cache snapshot write failed", "key", key, "error", err)
	}
}
