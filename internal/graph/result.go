package graph

import (
	"github.com/conceptbridge/conceptbridge/internal/utils"
)

// Discovery modes, recorded in result metadata.
const (
	ModeAuto        = "auto"
	ModeDisciplined = "disciplined"
	ModeBridge      = "bridge"
	ModeExpand      = "expand"
)

// Quality flags surfaced in metadata when a result is degraded but valid.
const (
	QualityOK                 = ""
	QualitySelectionShortfall = "selection_shortfall"
	QualityFallbackConcepts   = "fallback_concepts"
	QualityFilterBypassed     = "filter_bypassed"
)

// Metadata summarizes a discovery result.
type Metadata struct {
	TotalNodes     int     `json:"totalNodes"`
	TotalEdges     int     `json:"totalEdges"`
	AvgCredibility float64 `json:"avgCredibility"`
	Mode           string  `json:"mode"`
	Partial        bool    `json:"partial,omitempty"`
	QualityFlag    string  `json:"qualityFlag,omitempty"`
	ProcessingSecs float64 `json:"processingTime"`
}

// DiscoveryResult is the bounded graph returned for one discovery request.
// Constructed fresh per request, written to the cache tiers, never partially
// updated.
type DiscoveryResult struct {
	Nodes    []ConceptNode `json:"nodes"`
	Edges    []ConceptEdge `json:"edges"`
	Metadata Metadata      `json:"metadata"`
}

// Sanitize enforces the boundary contract on a result before it is returned
// or cached:
//
//   - definitions are truncated to MaxDefinitionLen runes (ellipsis included)
//   - credibility and similarity are clamped into [0,1]
//   - dangling edges, self-loops, and duplicate (source,target) pairs are
//     dropped
//   - metadata counts and average credibility are recomputed
//
// It mutates the receiver and returns it for chaining.
func (r *DiscoveryResult) Sanitize() *DiscoveryResult {
	ids := make(map[string]struct{}, len(r.Nodes))
	for i := range r.Nodes {
		n := &r.Nodes[i]
		n.Definition = utils.Truncate(n.Definition, MaxDefinitionLen)
		n.Credibility = clamp01(n.Credibility)
		if n.Similarity != nil {
			n.Similarity = Float64Ptr(clamp01(*n.Similarity))
		}
		ids[n.ID] = struct{}{}
	}

	seen := make(map[[2]string]struct{}, len(r.Edges))
	kept := r.Edges[:0]
	for _, e := range r.Edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		pair := [2]string{e.Source, e.Target}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		kept = append(kept, e)
	}
	r.Edges = kept

	r.Metadata.TotalNodes = len(r.Nodes)
	r.Metadata.TotalEdges = len(r.Edges)
	r.Metadata.AvgCredibility = avgCredibility(r.Nodes)
	return r
}

// RootCount returns the number of root (seed/input) nodes in the result.
func (r *DiscoveryResult) RootCount() int {
	count := 0
	for _, n := range r.Nodes {
		if n.IsRoot() {
			count++
		}
	}
	return count
}

func avgCredibility(nodes []ConceptNode) float64 {
	if len(nodes) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range nodes {
		sum += n.Credibility
	}
	return sum / float64(len(nodes))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
