package server

import "github.com/conceptbridge/conceptbridge/internal/graph"

// DiscoverRequest is the payload for /api/discover.
type DiscoverRequest struct {
	Concept string `json:"concept" validate:"required"`
}

// DisciplinedRequest is the payload for /api/discover/disciplined.
type DisciplinedRequest struct {
	Concept     string   `json:"concept" validate:"required"`
	Disciplines []string `json:"disciplines" validate:"required,min=1,dive,required"`
}

// BridgeRequest is the payload for /api/discover/bridge.
type BridgeRequest struct {
	Concepts []string `json:"concepts" validate:"required,min=2,dive,required"`
}

// ExpandRequest is the payload for /api/expand. ExistingConcepts carries the
// labels already present in the caller's graph so expansion only returns new
// nodes.
type ExpandRequest struct {
	Concept          string   `json:"concept" validate:"required"`
	ExistingConcepts []string `json:"existingConcepts"`
}

// InvalidateRequest is the payload for DELETE /api/cache.
type InvalidateRequest struct {
	Concept string `json:"concept" validate:"required"`
}

// SearchResponse is the response for /api/concepts/search.
type SearchResponse struct {
	Query   string              `json:"query"`
	Results []graph.ConceptNode `json:"results"`
}

// RelationTypesResponse is the response for /api/relations.
type RelationTypesResponse struct {
	Types []string `json:"types"`
}

// StatsResponse is the response for /api/stats.
type StatsResponse struct {
	Disciplines int    `json:"disciplines"`
	Version     string `json:"version"`
}

// APIError is the error envelope every failing endpoint returns.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
