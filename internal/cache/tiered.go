package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/conceptbridge/conceptbridge/internal/graph"
	"github.com/conceptbridge/conceptbridge/internal/store"
)

// TieredCache pairs a persistent GraphStore with an ephemeral ResultCache.
// Reads consult the persistent tier first and fall through to the ephemeral
// tier; writes go to both. Either tier may be nil, and a failing tier is
// logged and treated as a miss.
type TieredCache struct {
	ephemeral  ResultCache
	persistent store.GraphStore
	logger     *slog.Logger
}

// NewTieredCache wires the two tiers. logger may be nil.
func NewTieredCache(ephemeral ResultCache, persistent store.GraphStore, logger *slog.Logger) *TieredCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TieredCache{ephemeral: ephemeral, persistent: persistent, logger: logger}
}

// Get returns the cached result for key, or ErrMiss.
func (t *TieredCache) Get(ctx context.Context, key string) (*graph.DiscoveryResult, error) {
	if t.persistent != nil {
		result, err := t.persistent.LoadResult(ctx, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			t.logger.Warn("persistent store read failed", "key", key, "error", err)
		}
	}

	if t.ephemeral != nil {
		result, err := t.ephemeral.Get(ctx, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrMiss) {
			t.logger.Warn("ephemeral cache read failed", "key", key, "error", err)
		}
	}

	return nil, ErrMiss
}

// Put writes the result to both tiers. Failures are logged, never returned:
// by the time a result is cached it has already been delivered.
func (t *TieredCache) Put(ctx context.Context, key string, result *graph.DiscoveryResult) {
	if t.persistent != nil {
		if err := t.persistent.SaveResult(ctx, key, result); err != nil {
			t.logger.Warn("persistent store write failed", "key", key, "error", err)
		}
	}
	if t.ephemeral != nil {
		if err := t.ephemeral.Put(ctx, key, result); err != nil {
			t.logger.Warn("ephemeral cache write failed", "key", key, "error", err)
		}
	}
}

// Invalidate drops key from the ephemeral tier. The persistent tier keeps its
// copy; it is a store, not just a cache.
func (t *TieredCache) Invalidate(ctx context.Context, key string) {
	if t.ephemeral == nil {
		return
	}
	if err := t.ephemeral.Delete(ctx, key); err != nil {
		t.logger.Warn("cache invalidation failed", "key", key, "error", err)
	}
}

// Close closes both tiers and returns the first error seen.
func (t *TieredCache) Close() error {
	var first error
	if t.ephemeral != nil {
		if err := t.ephemeral.Close(); err != nil {
			first = err
		}
	}
	if t.persistent != nil {
		if err := t.persistent.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
