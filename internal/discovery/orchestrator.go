package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/conceptbridge/conceptbridge/internal/cache"
	"github.com/conceptbridge/conceptbridge/internal/config"
	"github.com/conceptbridge/conceptbridge/internal/graph"
	"github.com/conceptbridge/conceptbridge/internal/utils"
	"github.com/conceptbridge/conceptbridge/internal/wiki"
)

// Service sequences the discovery pipeline: generate, filter, score, select,
// assemble. Each request makes exactly one pass; every failure below
// generation degrades into a documented fallback instead of an error.
type Service struct {
	generator *Generator
	filter    *AcademicFilter
	scorer    *Scorer
	assembler *Assembler
	lookup    wiki.Lookup
	cache     *cache.TieredCache
	logger    *slog.Logger

	mu  sync.RWMutex
	cfg config.DiscoveryConfig
}

// NewService wires the pipeline stages. filter, cache, and lookup may be nil
// (filtering disabled, no caching, no authoritative definitions).
func NewService(generator *Generator, filter *AcademicFilter, scorer *Scorer, assembler *Assembler,
	lookup wiki.Lookup, resultCache *cache.TieredCache, cfg config.DiscoveryConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		generator: generator,
		filter:    filter,
		scorer:    scorer,
		assembler: assembler,
		lookup:    lookup,
		cache:     resultCache,
		cfg:       cfg,
		logger:    logger,
	}
}

// SetTuning swaps the pipeline tuning at runtime, used by config hot reload.
func (s *Service) SetTuning(cfg config.DiscoveryConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Service) tuning() config.DiscoveryConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Discover runs auto-mode discovery for one seed concept. Results for a
// normalized seed are cached; a hit skips the pipeline entirely.
func (s *Service) Discover(ctx context.Context, seed string) (*graph.DiscoveryResult, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, fmt.Errorf("%w: empty seed concept", graph.ErrInvalidRequest)
	}

	key := cache.Key(utils.NormalizeConcept(seed))
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Info("cache hit", "seed", seed)
			return cached, nil
		}
	}

	cfg := s.tuning()
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	start := time.Now()

	// Generating
	candidates := s.generator.Generate(ctx, seed, KnownSet(seed), cfg.MaxNodes)
	qualityFlag := graph.QualityOK
	if len(candidates) == 0 {
		s.logger.Warn("generation produced nothing, using static fallback", "seed", seed)
		candidates = FallbackCandidates(seed)
		qualityFlag = graph.QualityFallbackConcepts
	}

	// Filtering
	candidates, qualityFlag = s.applyFilter(ctx, candidates, qualityFlag)

	// Scoring and Selecting
	scored := s.scorer.ScoreAll(ctx, seed, candidates)
	selector := NewSelector(cfg.SimilarityThreshold, cfg.MinNodes, cfg.MaxNodes)
	selected := selector.Select(scored)
	if len(selected) < cfg.MinNodes && qualityFlag == graph.QualityOK {
		qualityFlag = graph.QualitySelectionShortfall
	}

	// Assembling
	root := s.assembleRoot(ctx, seed, "")
	result := &graph.DiscoveryResult{
		Nodes:    []graph.ConceptNode{root},
		Metadata: graph.Metadata{Mode: graph.ModeAuto, QualityFlag: qualityFlag},
	}
	partial := s.assembleChildren(ctx, result, root, selected)

	return s.finish(ctx, key, result, start, partial)
}

// DiscoverConstrained runs discovery restricted to an allow-list of
// disciplines. The allow-list is enforced after generation, so its results
// are never cached under the plain seed key.
func (s *Service) DiscoverConstrained(ctx context.Context, seed string, disciplines []string) (*graph.DiscoveryResult, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, fmt.Errorf("%w: empty seed concept", graph.ErrInvalidRequest)
	}
	if len(disciplines) == 0 {
		return nil, fmt.Errorf("%w: empty discipline list", graph.ErrInvalidRequest)
	}
	cleaned := make([]string, 0, len(disciplines))
	for _, d := range disciplines {
		d = strings.TrimSpace(d)
		if d == "" {
			return nil, fmt.Errorf("%w: blank discipline entry", graph.ErrInvalidRequest)
		}
		cleaned = append(cleaned, d)
	}

	cfg := s.tuning()
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	start := time.Now()

	candidates := s.generator.GenerateDisciplined(ctx, seed, KnownSet(seed), cleaned, cfg.MaxNodes)
	qualityFlag := graph.QualityOK
	if len(candidates) == 0 {
		s.logger.Warn("disciplined generation produced nothing, using static fallback",
			"seed", seed, "disciplines", cleaned)
		candidates = filterByDiscipline(FallbackCandidates(seed), cleaned)
		qualityFlag = graph.QualityFallbackConcepts
	}

	candidates, qualityFlag = s.applyFilter(ctx, candidates, qualityFlag)

	scored := s.scorer.ScoreAll(ctx, seed, candidates)
	selector := NewSelector(cfg.SimilarityThreshold, cfg.MinNodes, cfg.MaxNodes)
	selected := selector.Select(scored)
	if len(selected) < cfg.MinNodes && qualityFlag == graph.QualityOK {
		qualityFlag = graph.QualitySelectionShortfall
	}

	root := s.assembleRoot(ctx, seed, "")
	result := &graph.DiscoveryResult{
		Nodes:    []graph.ConceptNode{root},
		Metadata: graph.Metadata{Mode: graph.ModeDisciplined, QualityFlag: qualityFlag},
	}
	partial := s.assembleChildren(ctx, result, root, selected)

	return s.finish(ctx, "", result, start, partial)
}

// DiscoverBridge finds concepts linking two or more seeds and connects every
// seed to each selected bridge node.
func (s *Service) DiscoverBridge(ctx context.Context, seeds []string) (*graph.DiscoveryResult, error) {
	cleaned := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		if seed == "" {
			return nil, fmt.Errorf("%w: blank seed concept", graph.ErrInvalidRequest)
		}
		cleaned = append(cleaned, seed)
	}
	if len(cleaned) < 2 {
		return nil, fmt.Errorf("%w: bridge mode needs at least two concepts", graph.ErrInvalidRequest)
	}

	cfg := s.tuning()
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	start := time.Now()

	bridges := s.generator.GenerateBridges(ctx, cleaned, cfg.MaxNodes)
	qualityFlag := graph.QualityOK
	if len(bridges) == 0 {
		s.logger.Warn("bridge generation produced nothing", "seeds", cleaned)
		qualityFlag = graph.QualityFallbackConcepts
		for _, c := range FallbackCandidates(cleaned[0]) {
			bridges = append(bridges, BridgeCandidate{
				Name:       c.Name,
				BridgeType: BridgePrinciple,
				Principle:  c.Principle,
			})
		}
	}

	scored := s.scoreBridges(ctx, cleaned, bridges)
	selected := s.selectBridges(scored, cfg)
	if len(selected) < cfg.MinNodes && qualityFlag == graph.QualityOK {
		qualityFlag = graph.QualitySelectionShortfall
	}

	result := &graph.DiscoveryResult{
		Metadata: graph.Metadata{Mode: graph.ModeBridge, QualityFlag: qualityFlag},
	}
	seedIDs := make([]string, len(cleaned))
	for i, seed := range cleaned {
		root := s.assembleRoot(ctx, seed, "")
		seedIDs[i] = root.ID
		result.Nodes = append(result.Nodes, root)
	}

	partial := false
	for _, sb := range selected {
		if ctx.Err() != nil {
			partial = true
			break
		}
		node, edges := s.assembler.AssembleBridge(ctx, sb.Bridge, seedIDs, cleaned, sb.Similarities)
		result.Nodes = append(result.Nodes, node)
		result.Edges = append(result.Edges, edges...)
	}

	return s.finish(ctx, "", result, start, partial)
}

// Expand grows an existing graph outward from one of its nodes. It reruns
// auto-mode discovery seeded by that node's label, with every concept already
// in the caller's graph excluded, so only new nodes and edges come back. The
// output depends on the caller's graph and is never cached.
func (s *Service) Expand(ctx context.Context, seed string, existing []string) (*graph.DiscoveryResult, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, fmt.Errorf("%w: empty expansion concept", graph.ErrInvalidRequest)
	}
	known := KnownSet(append([]string{seed}, existing...)...)

	cfg := s.tuning()
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	start := time.Now()

	candidates := s.generator.Generate(ctx, seed, known, cfg.MaxNodes)
	qualityFlag := graph.QualityOK
	if len(candidates) == 0 {
		s.logger.Warn("expansion produced nothing, using static fallback", "seed", seed)
		candidates = excludeKnown(FallbackCandidates(seed), known)
		qualityFlag = graph.QualityFallbackConcepts
	}

	candidates, qualityFlag = s.applyFilter(ctx, candidates, qualityFlag)

	scored := s.scorer.ScoreAll(ctx, seed, candidates)
	selector := NewSelector(cfg.SimilarityThreshold, cfg.MinNodes, cfg.MaxNodes)
	selected := selector.Select(scored)
	if len(selected) < cfg.MinNodes && qualityFlag == graph.QualityOK {
		qualityFlag = graph.QualitySelectionShortfall
	}

	root := s.assembleRoot(ctx, seed, "")
	result := &graph.DiscoveryResult{
		Nodes:    []graph.ConceptNode{root},
		Metadata: graph.Metadata{Mode: graph.ModeExpand, QualityFlag: qualityFlag},
	}
	partial := s.assembleChildren(ctx, result, root, selected)

	return s.finish(ctx, "", result, start, partial)
}

// InvalidateCache drops the cached auto-mode result for the given seed.
func (s *Service) InvalidateCache(ctx context.Context, seed string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, cache.Key(utils.NormalizeConcept(seed)))
}

func (s *Service) applyFilter(ctx context.Context, candidates []Candidate, flag string) ([]Candidate, string) {
	cfg := s.tuning()
	if s.filter == nil || !cfg.AcademicFilterEnabled {
		return candidates, flag
	}
	kept, reverted := s.filter.FilterCandidates(ctx, candidates)
	if reverted && flag == graph.QualityOK {
		flag = graph.QualityFilterBypassed
	}
	return kept, flag
}

// assembleRoot builds the seed node. Roots carry no similarity; their
// credibility is the bare source prior.
func (s *Service) assembleRoot(ctx context.Context, seed, discipline string) graph.ConceptNode {
	node := graph.ConceptNode{
		ID:         graph.NewNodeID(seed),
		Label:      seed,
		Discipline: discipline,
		Source:     graph.SourceManual,
	}

	authoritative := false
	if s.lookup != nil {
		if res, err := s.lookup.Lookup(ctx, seed); err == nil && res.Exists {
			authoritative = true
			node.Definition = res.Definition
			node.SourceURL = res.URL
		} else if err != nil {
			s.logger.Warn("root definition lookup failed", "seed", seed, "error", err)
		}
	}
	if authoritative {
		node.Credibility = AuthoritativeBase
	} else {
		node.Credibility = UnauthoritativeBase
		node.Definition = fmt.Sprintf("%s is the seed concept of this discovery request.", seed)
	}
	return node
}

// assembleChildren appends one node and one edge per selected candidate,
// stopping early when the request deadline expires. Returns whether the
// result is partial.
func (s *Service) assembleChildren(ctx context.Context, result *graph.DiscoveryResult, root graph.ConceptNode, selected []ScoredCandidate) bool {
	for _, sc := range selected {
		if ctx.Err() != nil {
			s.logger.Warn("deadline hit during assembly, returning partial result",
				"assembled", len(result.Nodes)-1, "selected", len(selected))
			return true
		}
		node, edge := s.assembler.Assemble(ctx, sc.Candidate, root.ID, root.Label, sc.Similarity)
		result.Nodes = append(result.Nodes, node)
		result.Edges = append(result.Edges, edge)
	}
	return false
}

// finish stamps metadata, sanitizes, enforces the zero-node contract, and
// writes back to the cache when key is non-empty.
func (s *Service) finish(ctx context.Context, key string, result *graph.DiscoveryResult, start time.Time, partial bool) (*graph.DiscoveryResult, error) {
	result.Metadata.Partial = partial
	result.Metadata.ProcessingSecs = time.Since(start).Seconds()
	result.Sanitize()

	if result.Metadata.TotalNodes-result.RootCount() == 0 && !partial {
		return nil, graph.ErrNoConcepts
	}

	if s.cache != nil && key != "" && !partial {
		// Write-back uses a fresh context; the request deadline may already
		// have fired and caching is best-effort anyway.
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		s.cache.Put(writeCtx, key, result)
	}
	return result, nil
}

// ScoredBridge pairs a bridge candidate with one similarity per seed.
type ScoredBridge struct {
	Bridge       BridgeCandidate
	Similarities []float64
	avg          float64
}

// scoreBridges fans out across bridge candidates; each candidate fans out
// again across seeds, so every candidate-seed pair embeds concurrently.
// Results are index-addressed to keep candidate order.
func (s *Service) scoreBridges(ctx context.Context, seeds []string, bridges []BridgeCandidate) []ScoredBridge {
	scored := make([]ScoredBridge, len(bridges))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range bridges {
		scored[i].Bridge = b
		g.Go(func() error {
			sims := s.scorer.ScoreAgainstAll(gctx, b.Name, seeds)
			avg := 0.0
			for _, v := range sims {
				avg += v
			}
			if len(sims) > 0 {
				avg /= float64(len(sims))
			}
			scored[i].Similarities = sims
			scored[i].avg = avg
			return nil
		})
	}
	// Workers only record scores; no error can surface here.
	_ = g.Wait()
	return scored
}

// selectBridges ranks by bridge tier first (direct beats indirect beats
// principle), then by average similarity, and applies the same bounded
// decision table as single-seed selection.
func (s *Service) selectBridges(scored []ScoredBridge, cfg config.DiscoveryConfig) []ScoredBridge {
	sorted := make([]ScoredBridge, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := bridgeTierRank(sorted[i].Bridge.BridgeType), bridgeTierRank(sorted[j].Bridge.BridgeType)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].avg > sorted[j].avg
	})

	highQuality := 0
	for _, sb := range sorted {
		if sb.avg >= cfg.SimilarityThreshold {
			highQuality++
		}
	}

	switch {
	case highQuality < cfg.MinNodes:
		if len(sorted) < cfg.MinNodes {
			return sorted
		}
		return sorted[:cfg.MinNodes]
	case highQuality > cfg.MaxNodes:
		return sorted[:cfg.MaxNodes]
	default:
		// Tier ordering interleaves scores, so filter by threshold instead of
		// slicing a prefix.
		kept := make([]ScoredBridge, 0, highQuality)
		for _, sb := range sorted {
			if sb.avg >= cfg.SimilarityThreshold {
				kept = append(kept, sb)
			}
		}
		return kept
	}
}

// excludeKnown drops candidates whose normalized name is already known. The
// generator excludes them at parse time; this covers the static fallback set.
func excludeKnown(candidates []Candidate, known map[string]struct{}) []Candidate {
	var kept []Candidate
	for _, c := range candidates {
		if _, ok := known[utils.NormalizeConcept(c.Name)]; !ok {
			kept = append(kept, c)
		}
	}
	return kept
}

func filterByDiscipline(candidates []Candidate, allowed []string) []Candidate {
	set := make(map[string]struct{}, len(allowed))
	for _, d := range allowed {
		set[strings.ToLower(d)] = struct{}{}
	}
	var kept []Candidate
	for _, c := range candidates {
		if _, ok := set[strings.ToLower(c.Discipline)]; ok {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		// A fully off-list fallback set still beats an empty result.
		return candidates
	}
	return kept
}
