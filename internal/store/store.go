// Package store persists discovery results. It is cache tier 1: entries have
// no TTL and double as the long-term concept archive behind search.
package store

import (
	"context"
	"errors"

	"github.com/conceptbridge/conceptbridge/internal/graph"
)

// ErrNotFound is returned when no result exists for a cache key.
var ErrNotFound = errors.New("result not found")

// GraphStore is the persistence contract the cache and the HTTP boundary
// depend on. Implementations: SQLite (embedded, default) and Neo4j.
type GraphStore interface {
	// SaveResult upserts a complete discovery result under its cache key.
	SaveResult(ctx context.Context, key string, result *graph.DiscoveryResult) error

	// LoadResult returns the result stored under key, or ErrNotFound.
	LoadResult(ctx context.Context, key string) (*graph.DiscoveryResult, error)

	// SearchConcepts returns stored nodes whose label matches keyword,
	// case-insensitively, newest first.
	SearchConcepts(ctx context.Context, keyword string, limit int) ([]graph.ConceptNode, error)

	// Disciplines lists the distinct discipline tags seen so far.
	Disciplines(ctx context.Context) ([]string, error)

	Close() error
}
