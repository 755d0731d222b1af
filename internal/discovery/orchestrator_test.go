package discovery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conceptbridge/conceptbridge/internal/cache"
	"github.com/conceptbridge/conceptbridge/internal/config"
	"github.com/conceptbridge/conceptbridge/internal/graph"
	"github.com/conceptbridge/conceptbridge/internal/store"
	"github.com/conceptbridge/conceptbridge/internal/wiki"
)

// memStore is an in-memory store.GraphStore for cache wiring tests.
type memStore struct {
	entries map[string]*graph.DiscoveryResult
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]*graph.DiscoveryResult{}}
}

func (m *memStore) SaveResult(_ context.Context, key string, r *graph.DiscoveryResult) error {
	m.entries[key] = r
	return nil
}

func (m *memStore) LoadResult(_ context.Context, key string) (*graph.DiscoveryResult, error) {
	if r, ok := m.entries[key]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) SearchConcepts(context.Context, string, int) ([]graph.ConceptNode, error) {
	return nil, nil
}

func (m *memStore) Disciplines(context.Context) ([]string, error) { return nil, nil }

func (m *memStore) Close() error { return nil }

// vecFor builds an embedding whose similarity to the unit seed vector (1,0)
// normalizes to sim under (cos+1)/2.
func vecFor(sim float64) []float64 {
	cos := 2*sim - 1
	return []float64{cos, math.Sqrt(1 - cos*cos)}
}

func newTestService(chat *MockChatModel, embedder *MockEmbedder, lookup wiki.Lookup,
	tiered *cache.TieredCache, cfg config.DiscoveryConfig) *Service {
	generator := NewGenerator(chat, cfg.OversampleFactor, nil)
	filter := NewAcademicFilter(chat, nil)
	scorer := NewScorer(embedder, cfg.FallbackSimilarity, nil)
	assembler := NewAssembler(lookup, nil, cfg.EdgeWeightScale, cfg.EdgeWeightFloor, nil)
	return NewService(generator, filter, scorer, assembler, lookup, tiered, cfg, nil)
}

func TestDiscoverEntropyScenario(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		prompt := userContent(input)
		if strings.HasPrefix(prompt, "Is ") {
			return "yes", nil
		}
		return `Shannon entropy|information theory|foundation
thermodynamic entropy|physics|analogy`, nil
	}}
	embedder := &MockEmbedder{
		VectorFor: map[string][]float64{
			"entropy":               {1, 0},
			"shannon entropy":       vecFor(0.9),
			"thermodynamic entropy": vecFor(0.85),
		},
		Default: []float64{1, 0},
	}
	lookup := &fakeLookup{entries: map[string]wiki.Result{
		"entropy": {Exists: true, Definition: "A measure of disorder.", URL: "https://en.wikipedia.org/wiki/Entropy"},
	}}

	cfg := config.DefaultDiscoveryConfig()
	cfg.MinNodes = 1
	cfg.MaxNodes = 5
	svc := newTestService(chat, embedder, lookup, nil, cfg)

	result, err := svc.Discover(context.Background(), "entropy")
	require.NoError(t, err)

	require.Len(t, result.Nodes, 3, "one root plus two selected concepts")
	require.Len(t, result.Edges, 2)

	root := result.Nodes[0]
	assert.Equal(t, "entropy", root.Label)
	assert.Equal(t, graph.SourceManual, root.Source)
	assert.Nil(t, root.Similarity)
	assert.InDelta(t, AuthoritativeBase, root.Credibility, 1e-9)

	assert.Equal(t, "Shannon entropy", result.Nodes[1].Label, "sorted by similarity descending")
	assert.Equal(t, "thermodynamic entropy", result.Nodes[2].Label)

	ids := map[string]struct{}{}
	for _, n := range result.Nodes {
		ids[n.ID] = struct{}{}
	}
	for _, e := range result.Edges {
		_, srcOK := ids[e.Source]
		_, dstOK := ids[e.Target]
		assert.True(t, srcOK && dstOK, "no dangling edges")
		assert.GreaterOrEqual(t, e.Weight, 0.1)
		assert.LessOrEqual(t, e.Weight, 1.0)
	}

	assert.Equal(t, graph.ModeAuto, result.Metadata.Mode)
	assert.Equal(t, 3, result.Metadata.TotalNodes)
	assert.Equal(t, 2, result.Metadata.TotalEdges)
	assert.False(t, result.Metadata.Partial)
	assert.Empty(t, result.Metadata.QualityFlag)
}

func TestDiscoverInvalidRequests(t *testing.T) {
	svc := newTestService(&MockChatModel{Respond: func([]*schema.Message) (string, error) { return "", nil }},
		&MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil, config.DefaultDiscoveryConfig())
	ctx := context.Background()

	_, err := svc.Discover(ctx, "  ")
	assert.ErrorIs(t, err, graph.ErrInvalidRequest)

	_, err = svc.DiscoverConstrained(ctx, "entropy", nil)
	assert.ErrorIs(t, err, graph.ErrInvalidRequest)

	_, err = svc.DiscoverConstrained(ctx, "entropy", []string{"physics", " "})
	assert.ErrorIs(t, err, graph.ErrInvalidRequest)

	_, err = svc.DiscoverBridge(ctx, []string{"entropy"})
	assert.ErrorIs(t, err, graph.ErrInvalidRequest)

	_, err = svc.DiscoverBridge(ctx, []string{"entropy", ""})
	assert.ErrorIs(t, err, graph.ErrInvalidRequest)

	_, err = svc.Expand(ctx, "  ", []string{"entropy"})
	assert.ErrorIs(t, err, graph.ErrInvalidRequest)
}

func TestDiscoverFallsBackToStaticConcepts(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		if strings.HasPrefix(userContent(input), "Is ") {
			return "yes", nil
		}
		return "", errors.New("model down")
	}}
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil,
		config.DefaultDiscoveryConfig())

	result, err := svc.Discover(context.Background(), "entropy")
	require.NoError(t, err)
	assert.Equal(t, graph.QualityFallbackConcepts, result.Metadata.QualityFlag)
	assert.Greater(t, result.Metadata.TotalNodes, 1, "static fallback still yields concepts")
}

func TestDiscoverFilterExhaustedBypasses(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		if strings.HasPrefix(userContent(input), "Is ") {
			return "no", nil
		}
		return `statistics|mathematics|foundation
linear algebra|mathematics|foundation
probability theory|mathematics|foundation`, nil
	}}
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil,
		config.DefaultDiscoveryConfig())

	result, err := svc.Discover(context.Background(), "entropy")
	require.NoError(t, err)
	assert.Equal(t, graph.QualityFilterBypassed, result.Metadata.QualityFlag)
	assert.Equal(t, 4, result.Metadata.TotalNodes, "unfiltered candidates survive")
}

func TestDiscoverCacheHitSkipsPipeline(t *testing.T) {
	persistent := newMemStore()
	cached := &graph.DiscoveryResult{
		Nodes:    []graph.ConceptNode{{ID: "root", Label: "entropy", Credibility: 0.95, Source: graph.SourceManual}},
		Metadata: graph.Metadata{TotalNodes: 1, Mode: graph.ModeAuto},
	}
	persistent.entries[cache.Key("entropy")] = cached

	chat := &MockChatModel{Respond: func([]*schema.Message) (string, error) {
		return "", errors.New("must not be called")
	}}
	tiered := cache.NewTieredCache(nil, persistent, nil)
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, tiered,
		config.DefaultDiscoveryConfig())

	result, err := svc.Discover(context.Background(), " Entropy ")
	require.NoError(t, err)
	assert.Equal(t, cached, result, "normalized seed hits the cache")
	assert.Empty(t, chat.Calls)
}

func TestDiscoverWritesBackToCache(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		if strings.HasPrefix(userContent(input), "Is ") {
			return "yes", nil
		}
		return "statistics|mathematics|foundation\nlinear algebra|mathematics|foundation\nprobability theory|mathematics|foundation", nil
	}}
	persistent := newMemStore()
	tiered := cache.NewTieredCache(nil, persistent, nil)
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, tiered,
		config.DefaultDiscoveryConfig())

	_, err := svc.Discover(context.Background(), "entropy")
	require.NoError(t, err)
	assert.Contains(t, persistent.entries, cache.Key("entropy"))
}

func TestDiscoverExpiredDeadlineReturnsPartial(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		if strings.HasPrefix(userContent(input), "Is ") {
			return "yes", nil
		}
		return "statistics|mathematics|foundation\nlinear algebra|mathematics|foundation", nil
	}}
	persistent := newMemStore()
	tiered := cache.NewTieredCache(nil, persistent, nil)
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, tiered,
		config.DefaultDiscoveryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Discover(ctx, "entropy")
	require.NoError(t, err, "an expired deadline degrades, it does not fail")
	assert.True(t, result.Metadata.Partial)
	assert.Equal(t, 1, result.Metadata.TotalNodes, "assembly stops at the root")
	assert.Empty(t, persistent.entries, "partial results are never cached")
}

func TestExpandSkipsExistingConcepts(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		prompt := userContent(input)
		if strings.HasPrefix(prompt, "Is ") {
			return "yes", nil
		}
		return `Shannon entropy|information theory|foundation
thermodynamic entropy|physics|analogy
Kolmogorov complexity|computer science|analogy`, nil
	}}
	cfg := config.DefaultDiscoveryConfig()
	cfg.MinNodes = 1
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil, cfg)

	result, err := svc.Expand(context.Background(), "entropy", []string{"entropy", "Shannon entropy"})
	require.NoError(t, err)

	assert.Equal(t, graph.ModeExpand, result.Metadata.Mode)
	require.Len(t, result.Nodes, 3, "root plus the two genuinely new concepts")
	for _, n := range result.Nodes {
		assert.NotEqual(t, "Shannon entropy", n.Label, "concepts already in the graph stay out")
	}
}

// trackingEmbedder records the peak number of concurrent EmbedStrings calls.
type trackingEmbedder struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (e *trackingEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	e.mu.Lock()
	e.inFlight++
	if e.inFlight > e.peak {
		e.peak = e.inFlight
	}
	e.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	e.mu.Lock()
	e.inFlight--
	e.mu.Unlock()

	out := make([][]float64, len(texts))
	for i := range out {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

func TestScoreBridgesFansOutAcrossCandidates(t *testing.T) {
	emb := &trackingEmbedder{}
	cfg := config.DefaultDiscoveryConfig()
	svc := NewService(nil, nil, NewScorer(emb, cfg.FallbackSimilarity, nil), nil, nil, nil, cfg, nil)

	seeds := []string{"entropy", "least squares"}
	bridges := make([]BridgeCandidate, 6)
	for i := range bridges {
		bridges[i] = BridgeCandidate{Name: fmt.Sprintf("bridge concept %d", i), BridgeType: BridgeDirect}
	}

	scored := svc.scoreBridges(context.Background(), seeds, bridges)

	require.Len(t, scored, len(bridges))
	for i, sb := range scored {
		assert.Equal(t, bridges[i].Name, sb.Bridge.Name, "fan-out keeps candidate order")
		assert.Len(t, sb.Similarities, len(seeds))
	}
	assert.Greater(t, emb.peak, len(seeds),
		"candidate scoring must overlap instead of finishing one candidate before the next")
}

func TestDiscoverConstrainedMode(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		prompt := userContent(input)
		if strings.HasPrefix(prompt, "Is ") {
			return "yes", nil
		}
		return `gradient descent|mathematics|methodology|optimizes loss
social contract|philosophy|foundation|off list
matrix multiplication|mathematics|foundation|forward pass
probability theory|mathematics|foundation|uncertainty`, nil
	}}
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil,
		config.DefaultDiscoveryConfig())

	result, err := svc.DiscoverConstrained(context.Background(), "neural network", []string{"mathematics"})
	require.NoError(t, err)
	assert.Equal(t, graph.ModeDisciplined, result.Metadata.Mode)
	for _, n := range result.Nodes[1:] {
		assert.Equal(t, "mathematics", n.Discipline)
	}
}

func TestDiscoverBridgeTwoSeedsTwoEdges(t *testing.T) {
	chat := &MockChatModel{Respond: func(input []*schema.Message) (string, error) {
		return "information theory|direct|entropy,least squares|both quantify uncertainty", nil
	}}
	cfg := config.DefaultDiscoveryConfig()
	cfg.MinNodes = 1
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil, cfg)

	result, err := svc.DiscoverBridge(context.Background(), []string{"entropy", "least squares"})
	require.NoError(t, err)

	assert.Equal(t, graph.ModeBridge, result.Metadata.Mode)
	assert.Equal(t, 2, result.RootCount(), "one root per seed")
	require.Len(t, result.Nodes, 3)
	require.Len(t, result.Edges, 2, "one edge from every seed to the bridge node")

	bridgeID := result.Nodes[2].ID
	assert.Equal(t, result.Nodes[0].ID, result.Edges[0].Source)
	assert.Equal(t, result.Nodes[1].ID, result.Edges[1].Source)
	for _, e := range result.Edges {
		assert.Equal(t, bridgeID, e.Target)
		assert.Equal(t, graph.RelationBridge, e.RelationType)
	}
}

func TestDiscoverBridgeTierOrdering(t *testing.T) {
	chat := &MockChatModel{Respond: func([]*schema.Message) (string, error) {
		return `optimization theory|principle|entropy,least squares|shared principle
information theory|direct|entropy,least squares|direct link`, nil
	}}
	cfg := config.DefaultDiscoveryConfig()
	cfg.MinNodes = 1
	svc := newTestService(chat, &MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil, cfg)

	result, err := svc.DiscoverBridge(context.Background(), []string{"entropy", "least squares"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Nodes), 4)
	assert.Equal(t, "information theory", result.Nodes[2].Label,
		"direct-tier bridges outrank principle-tier regardless of generation order")
}

func TestSetTuningHotReload(t *testing.T) {
	svc := newTestService(&MockChatModel{Respond: func([]*schema.Message) (string, error) { return "", nil }},
		&MockEmbedder{Default: []float64{1, 0}}, &fakeLookup{}, nil, config.DefaultDiscoveryConfig())

	updated := config.DefaultDiscoveryConfig()
	updated.MaxNodes = 4
	svc.SetTuning(updated)
	assert.Equal(t, 4, svc.tuning().MaxNodes)
}
