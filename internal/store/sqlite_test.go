package store

import (
	"context"
	"testing"

	"github.com/conceptbridge/conceptbridge/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult() *graph.DiscoveryResult {
	return &graph.DiscoveryResult{
		Nodes: []graph.ConceptNode{
			{ID: "entropy_root", Label: "Entropy", Discipline: "Physics", Definition: "A measure of disorder.", Credibility: 0.95, Source: graph.SourceManual},
			{ID: "info_theory_1", Label: "Information Theory", Discipline: "Mathematics", Definition: "Quantifies information.", Similarity: graph.Float64Ptr(0.81), Credibility: 0.9, Source: graph.SourceKnowledgeBase, SourceURL: "https://en.wikipedia.org/wiki/Information_theory"},
		},
		Edges: []graph.ConceptEdge{
			{Source: "entropy_root", Target: "info_theory_1", RelationType: graph.RelationFoundation, Weight: 0.829, Reasoning: "Shannon entropy"},
		},
		Metadata: graph.Metadata{TotalNodes: 2, TotalEdges: 1, AvgCredibility: 0.925, Mode: graph.ModeAuto},
	}
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, "discover:v2:entropy", sampleResult()))

	got, err := s.LoadResult(ctx, "discover:v2:entropy")
	require.NoError(t, err)
	require.Len(t, got.Nodes, 2)
	require.Len(t, got.Edges, 1)
	assert.Equal(t, "Entropy", got.Nodes[0].Label)
	assert.Nil(t, got.Nodes[0].Similarity)
	require.NotNil(t, got.Nodes[1].Similarity)
	assert.InDelta(t, 0.81, *got.Nodes[1].Similarity, 1e-9)
	assert.Equal(t, graph.ModeAuto, got.Metadata.Mode)
}

func TestSQLiteLoadMissingKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadResult(context.Background(), "discover:v2:nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, "k", sampleResult()))

	updated := sampleResult()
	updated.Nodes = updated.Nodes[:1]
	updated.Edges = nil
	updated.Metadata.TotalNodes = 1
	updated.Metadata.TotalEdges = 0
	require.NoError(t, s.SaveResult(ctx, "k", updated))

	got, err := s.LoadResult(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, got.Nodes, 1)
	assert.Empty(t, got.Edges)

	// Child rows are replaced, not accumulated.
	nodes, err := s.SearchConcepts(ctx, "Information", 10)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestSQLiteSearchConcepts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveResult(ctx, "k", sampleResult()))

	nodes, err := s.SearchConcepts(ctx, "information", 10)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Information Theory", nodes[0].Label)
	assert.Equal(t, graph.SourceKnowledgeBase, nodes[0].Source)
	require.NotNil(t, nodes[0].Similarity)
}

func TestSQLiteDisciplines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveResult(ctx, "k", sampleResult()))

	disciplines, err := s.Disciplines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mathematics", "Physics"}, disciplines)
}
