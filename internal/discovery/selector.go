package discovery

import "sort"

// DefaultSimilarityThreshold is the empirically chosen cutoff above which a
// candidate counts as high quality. Overridable through configuration.
const DefaultSimilarityThreshold = 0.62

// Selector applies dynamic-threshold selection to a scored candidate list,
// returning a subset bounded by [minNodes, maxNodes].
type Selector struct {
	Threshold float64
	MinNodes  int
	MaxNodes  int
}

// NewSelector builds a selector, normalizing degenerate bounds.
func NewSelector(threshold float64, minNodes, maxNodes int) Selector {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultSimilarityThreshold
	}
	if minNodes < 1 {
		minNodes = 1
	}
	if maxNodes < minNodes {
		maxNodes = minNodes
	}
	return Selector{Threshold: threshold, MinNodes: minNodes, MaxNodes: maxNodes}
}

// Select sorts candidates by similarity descending (stable, so equal scores
// keep generation order) and applies the decision table:
//
//   - fewer high-quality candidates than MinNodes: take the top MinNodes of
//     the full list, threshold ignored
//   - more than MaxNodes: take the top MaxNodes of the high-quality subset
//   - otherwise: the high-quality subset as-is
//
// Pure function of its input; the caller's slice is not mutated.
func (s Selector) Select(scored []ScoredCandidate) []ScoredCandidate {
	sorted := make([]ScoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})

	highQuality := 0
	for _, c := range sorted {
		if c.Similarity >= s.Threshold {
			highQuality++
		}
	}

	switch {
	case highQuality < s.MinNodes:
		if len(sorted) < s.MinNodes {
			return sorted
		}
		return sorted[:s.MinNodes]
	case highQuality > s.MaxNodes:
		return sorted[:s.MaxNodes]
	default:
		return sorted[:highQuality]
	}
}

// EdgeWeight maps similarity into the weight range [floor, scale+floor].
// The floor keeps every edge visible when rendered.
func EdgeWeight(similarity, scale, floor float64) float64 {
	return similarity*scale + floor
}
