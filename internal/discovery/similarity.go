package discovery

import (
	"context"
	"log/slog"
	"math"

	"github.com/cloudwego/eino/components/embedding"
	"golang.org/x/sync/errgroup"
)

// Scorer computes normalized [0,1] semantic closeness between concept
// strings using an embedding model. Embedding failures degrade to a fixed
// fallback score: similarity feeds ranking, it is not correctness-critical.
type Scorer struct {
	embedder embedding.Embedder
	// fallback is returned when the embedding capability is unavailable.
	fallback float64
	logger   *slog.Logger
}

// NewScorer wraps an embedder. fallback values outside (0,1] reset to 0.75.
func NewScorer(embedder embedding.Embedder, fallback float64, logger *slog.Logger) *Scorer {
	if fallback <= 0 || fallback > 1 {
		fallback = 0.75
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{embedder: embedder, fallback: fallback, logger: logger}
}

// Similarity embeds both strings in one call and returns (cosine+1)/2.
func (s *Scorer) Similarity(ctx context.Context, a, b string) float64 {
	if s.embedder == nil {
		return s.fallback
	}
	vectors, err := s.embedder.EmbedStrings(ctx, []string{a, b})
	if err != nil || len(vectors) < 2 {
		s.logger.Warn("embedding unavailable, using fallback similarity",
			"a", a, "b", b, "fallback", s.fallback, "error", err)
		return s.fallback
	}
	cos, ok := cosine(vectors[0], vectors[1])
	if !ok {
		s.logger.Warn("degenerate embedding vectors, using fallback similarity", "a", a, "b", b)
		return s.fallback
	}
	return (cos + 1) / 2
}

// ScoreAll scores every candidate against seed concurrently. Results are
// index-addressed so the fan-out never perturbs candidate order.
func (s *Scorer) ScoreAll(ctx context.Context, seed string, candidates []Candidate) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		scored[i].Candidate = c
		g.Go(func() error {
			scored[i].Similarity = s.Similarity(gctx, seed, c.Name)
			return nil
		})
	}
	// Workers only record scores; no error can surface here.
	_ = g.Wait()
	return scored
}

// ScoreAgainstAll scores one concept against every seed, returning one score
// per seed in seed order. Used by bridge mode, where each bridge candidate
// carries a similarity per input concept.
func (s *Scorer) ScoreAgainstAll(ctx context.Context, concept string, seeds []string) []float64 {
	scores := make([]float64, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, seed := range seeds {
		g.Go(func() error {
			scores[i] = s.Similarity(gctx, seed, concept)
			return nil
		})
	}
	_ = g.Wait()
	return scores
}

// ScoredCandidate pairs a candidate with its similarity to the seed.
type ScoredCandidate struct {
	Candidate  Candidate
	Similarity float64
}

func cosine(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
