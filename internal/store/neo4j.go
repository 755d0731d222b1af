package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/conceptbridge/conceptbridge/internal/graph"
)

// Neo4jStore implements GraphStore on top of a Neo4j instance. Results are
// stored twice: the full JSON payload on a Result node for exact round-trips,
// and individual Concept nodes with RELATES_TO edges for graph queries.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore connects to uri with basic auth and verifies connectivity.
func NewNeo4jStore(ctx context.Context, uri, user, pass string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j connect: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver}, nil
}

func (s *Neo4jStore) SaveResult(ctx context.Context, key string, result *graph.DiscoveryResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer sess.Close(ctx)

	_, err = sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
		MERGE (r:Result {key: $key})
		SET r.mode = $mode,
		    r.payload = $payload,
		    r.updated_at = datetime()
		WITH r
		OPTIONAL MATCH (r)-[:CONTAINS]->(old:Concept)
		DETACH DELETE old`,
			map[string]any{"key": key, "mode": result.Metadata.Mode, "payload": string(payload)}); err != nil {
			return nil, err
		}

		for _, n := range result.Nodes {
			params := map[string]any{
				"key":         key,
				"id":          n.ID,
				"label":       n.Label,
				"discipline":  n.Discipline,
				"definition":  n.Definition,
				"summary":     n.BriefSummary,
				"credibility": n.Credibility,
				"source":      string(n.Source),
				"sourceURL":   n.SourceURL,
			}
			if n.Similarity != nil {
				params["similarity"] = *n.Similarity
			} else {
				params["similarity"] = nil
			}
			if _, err := tx.Run(ctx, `
			MATCH (r:Result {key: $key})
			CREATE (c:Concept {
				id: $id, label: $label, discipline: $discipline,
				definition: $definition, brief_summary: $summary,
				similarity: $similarity, credibility: $credibility,
				source: $source, source_url: $sourceURL
			})
			CREATE (r)-[:CONTAINS]->(c)`, params); err != nil {
				return nil, err
			}
		}

		for _, e := range result.Edges {
			if _, err := tx.Run(ctx, `
			MATCH (r:Result {key: $key})-[:CONTAINS]->(src:Concept {id: $src})
			MATCH (r)-[:CONTAINS]->(dst:Concept {id: $dst})
			CREATE (src)-[:RELATES_TO {
				relation_type: $relType, weight: $weight, reasoning: $reasoning
			}]->(dst)`,
				map[string]any{
					"key": key, "src": e.Source, "dst": e.Target,
					"relType": e.RelationType, "weight": e.Weight, "reasoning": e.Reasoning,
				}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *Neo4jStore) LoadResult(ctx context.Context, key string) (*graph.DiscoveryResult, error) {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer sess.Close(ctx)

	payload, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (r:Result {key: $key}) RETURN r.payload AS payload`,
			map[string]any{"key": key})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, ErrNotFound
		}
		p, _ := rec.Get("payload")
		return p, nil
	})
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}

	raw, ok := payload.(string)
	if !ok || raw == "" {
		return nil, ErrNotFound
	}
	var result graph.DiscoveryResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

func (s *Neo4jStore) SearchConcepts(ctx context.Context, keyword string, limit int) ([]graph.ConceptNode, error) {
	if limit <= 0 {
		limit = 10
	}
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer sess.Close(ctx)

	out, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
		MATCH (c:Concept)
		WHERE toLower(c.label) CONTAINS toLower($keyword)
		RETURN c LIMIT $limit`,
			map[string]any{"keyword": keyword, "limit": limit})
		if err != nil {
			return nil, err
		}

		var nodes []graph.ConceptNode
		for res.Next(ctx) {
			val, ok := res.Record().Get("c")
			if !ok {
				continue
			}
			node, ok := val.(neo4j.Node)
			if !ok {
				continue
			}
			nodes = append(nodes, conceptFromProps(node.Props))
		}
		return nodes, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("search concepts: %w", err)
	}
	return out.([]graph.ConceptNode), nil
}

func (s *Neo4jStore) Disciplines(ctx context.Context) ([]string, error) {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer sess.Close(ctx)

	out, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
		MATCH (c:Concept)
		WHERE c.discipline <> ''
		RETURN DISTINCT c.discipline AS discipline
		ORDER BY discipline`, nil)
		if err != nil {
			return nil, err
		}
		var disciplines []string
		for res.Next(ctx) {
			if d, ok := res.Record().Get("discipline"); ok {
				if str, ok := d.(string); ok {
					disciplines = append(disciplines, str)
				}
			}
		}
		return disciplines, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query disciplines: %w", err)
	}
	return out.([]string), nil
}

func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

func conceptFromProps(props map[string]any) graph.ConceptNode {
	n := graph.ConceptNode{
		ID:           strProp(props, "id"),
		Label:        strProp(props, "label"),
		Discipline:   strProp(props, "discipline"),
		Definition:   strProp(props, "definition"),
		BriefSummary: strProp(props, "brief_summary"),
		Source:       graph.SourceKind(strProp(props, "source")),
		SourceURL:    strProp(props, "source_url"),
	}
	if v, ok := props["credibility"].(float64); ok {
		n.Credibility = v
	}
	if v, ok := props["similarity"].(float64); ok {
		n.Similarity = graph.Float64Ptr(v)
	}
	return n
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
