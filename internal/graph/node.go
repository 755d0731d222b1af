// Package graph defines the concept-graph domain model shared by the
// discovery pipeline, the cache tiers, and the HTTP boundary.
package graph

import (
	"strings"

	"github.com/google/uuid"
)

// SourceKind tags where a node's definition came from.
type SourceKind string

const (
	// SourceKnowledgeBase marks definitions backed by the knowledge-lookup
	// collaborator (an authoritative source).
	SourceKnowledgeBase SourceKind = "knowledge_base"
	// SourceLanguageModel marks definitions generated by the language model.
	SourceLanguageModel SourceKind = "language_model"
	// SourceManual marks user-supplied nodes (seed concepts).
	SourceManual SourceKind = "manual"
)

// MaxDefinitionLen is the boundary limit for node definitions, ellipsis
// included. Longer definitions are truncated before a result leaves the core.
const MaxDefinitionLen = 500

// ConceptNode is one concept in a discovery result. Nodes are immutable once
// returned; expanding a graph creates new nodes rather than editing existing
// ones.
type ConceptNode struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	Discipline   string     `json:"discipline"`
	Definition   string     `json:"definition"`
	BriefSummary string     `json:"briefSummary,omitempty"`
	Similarity   *float64   `json:"similarity,omitempty"`
	Credibility  float64    `json:"credibility"`
	Source       SourceKind `json:"source"`
	SourceURL    string     `json:"sourceUrl,omitempty"`
}

// IsRoot reports whether the node is a seed/input node. Root nodes carry no
// similarity score because there is no parent to score against.
func (n ConceptNode) IsRoot() bool {
	return n.Similarity == nil
}

// NewNodeID builds a response-scoped node identifier from a concept label.
// IDs are unique within one response, not stable across calls.
func NewNodeID(label string) string {
	slug := strings.ToLower(strings.TrimSpace(label))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			// Non-ASCII labels (common for non-English concepts) keep their
			// runes; the uuid suffix guarantees uniqueness either way.
			return r
		}
	}, slug)
	if slug == "" {
		slug = "concept"
	}
	return slug + "_" + uuid.NewString()[:8]
}

// Float64Ptr returns a pointer to v, for populating optional scores.
func Float64Ptr(v float64) *float64 { return &v }
