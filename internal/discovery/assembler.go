package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conceptbridge/conceptbridge/internal/graph"
	"github.com/conceptbridge/conceptbridge/internal/wiki"
	"github.com/conceptbridge/conceptbridge/prompts"
)

// Assembler turns a selected candidate into a node and its parent edge. It
// attaches an authoritative definition when the knowledge lookup has one,
// fuses credibility, and derives the edge weight from similarity.
type Assembler struct {
	lookup     wiki.Lookup
	summarizer *Summarizer
	// weightScale and weightFloor map similarity into edge weight.
	weightScale float64
	weightFloor float64
	logger      *slog.Logger
}

// NewAssembler wires the knowledge lookup and optional summarizer.
func NewAssembler(lookup wiki.Lookup, summarizer *Summarizer, weightScale, weightFloor float64, logger *slog.Logger) *Assembler {
	if weightScale <= 0 {
		weightScale = 0.9
	}
	if weightFloor < 0 {
		weightFloor = 0.1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		lookup:      lookup,
		summarizer:  summarizer,
		weightScale: weightScale,
		weightFloor: weightFloor,
		logger:      logger,
	}
}

// Assemble builds the node for candidate and the edge connecting it to
// parentID. Lookup failures degrade to a model-sourced templated definition.
func (a *Assembler) Assemble(ctx context.Context, c Candidate, parentID, parentLabel string, similarity float64) (graph.ConceptNode, graph.ConceptEdge) {
	node := a.assembleNode(ctx, c.Name, c.Discipline, parentLabel, similarity)

	edge := graph.ConceptEdge{
		Source:       parentID,
		Target:       node.ID,
		RelationType: c.RelationType,
		Weight:       EdgeWeight(similarity, a.weightScale, a.weightFloor),
		Reasoning:    a.reasoning(c, parentLabel),
	}
	return node, edge
}

// AssembleBridge builds the node for a bridge candidate plus one edge per
// seed. seedIDs and seedLabels run parallel to similarities; the edge weight
// uses each seed's own similarity while the node keeps the average.
func (a *Assembler) AssembleBridge(ctx context.Context, b BridgeCandidate, seedIDs, seedLabels []string, similarities []float64) (graph.ConceptNode, []graph.ConceptEdge) {
	avg := 0.0
	for _, s := range similarities {
		avg += s
	}
	if len(similarities) > 0 {
		avg /= float64(len(similarities))
	}

	node := a.assembleNode(ctx, b.Name, "interdisciplinary", seedLabels[0], avg)

	reasoning := b.Principle
	if reasoning == "" {
		reasoning = fmt.Sprintf("%q bridges the input concepts (%s tier)", b.Name, b.BridgeType)
	}

	edges := make([]graph.ConceptEdge, 0, len(seedIDs))
	for i, id := range seedIDs {
		edges = append(edges, graph.ConceptEdge{
			Source:       id,
			Target:       node.ID,
			RelationType: graph.RelationBridge,
			Weight:       EdgeWeight(similarities[i], a.weightScale, a.weightFloor),
			Reasoning:    reasoning,
		})
	}
	return node, edges
}

func (a *Assembler) assembleNode(ctx context.Context, name, discipline, parentLabel string, similarity float64) graph.ConceptNode {
	node := graph.ConceptNode{
		ID:         graph.NewNodeID(name),
		Label:      name,
		Discipline: discipline,
		Similarity: graph.Float64Ptr(similarity),
	}

	authoritative := false
	if a.lookup != nil {
		res, err := a.lookup.Lookup(ctx, name)
		if err != nil {
			a.logger.Warn("knowledge lookup failed", "term", name, "error", err)
		} else if res.Exists {
			authoritative = true
			node.Definition = res.Definition
			node.SourceURL = res.URL
		}
	}

	if authoritative {
		node.Source = graph.SourceKnowledgeBase
	} else {
		node.Source = graph.SourceLanguageModel
		node.Definition = fmt.Sprintf(prompts.FallbackDefinitionTmpl, name, discipline)
	}
	node.Credibility = Credibility(authoritative, similarity)

	if a.summarizer != nil {
		node.BriefSummary = a.summarizer.Summarize(ctx, name, parentLabel)
	}
	return node
}

func (a *Assembler) reasoning(c Candidate, parentLabel string) string {
	if c.Principle != "" {
		return c.Principle
	}
	switch c.RelationType {
	case graph.RelationFoundation:
		return fmt.Sprintf("%q is a foundation underlying %q", c.Name, parentLabel)
	case graph.RelationMethodology:
		return fmt.Sprintf("%q provides methodology used by %q", c.Name, parentLabel)
	case graph.RelationApplication:
		return fmt.Sprintf("%q applies ideas from %q", c.Name, parentLabel)
	case graph.RelationSubField:
		return fmt.Sprintf("%q is a sub-field of %q", c.Name, parentLabel)
	case graph.RelationAnalogy:
		return fmt.Sprintf("%q is structurally analogous to %q", c.Name, parentLabel)
	default:
		return fmt.Sprintf("%q relates to %q through %s", c.Name, parentLabel, c.RelationType)
	}
}
