// Package cache layers a persistent result store under an ephemeral TTL
// cache. Cache failures are soft: a broken tier degrades to a miss, it never
// fails a discovery request.
package cache

import (
	"context"
	"errors"

	"github.com/conceptbridge/conceptbridge/internal/graph"
)

// ErrMiss is returned when no tier holds the requested key.
var ErrMiss = errors.New("cache: miss")

// ResultCache is a single cache tier keyed by discovery cache key.
type ResultCache interface {
	Get(ctx context.Context, key string) (*graph.DiscoveryResult, error)
	Put(ctx context.Context, key string, result *graph.DiscoveryResult) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key builds the versioned cache key for a normalized concept term. Bumping
// the version invalidates every previously cached result at once.
func Key(normalizedConcept string) string {
	return "discover:v2:" + normalizedConcept
}
