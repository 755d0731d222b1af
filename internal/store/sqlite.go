package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/conceptbridge/conceptbridge/internal/graph"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements GraphStore using an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database under basePath. Pass
// ":memory:" for an ephemeral database in tests.
func NewSQLiteStore(basePath string) (*SQLiteStore, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "conceptbridge.db")
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		cache_key TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		payload TEXT NOT NULL,              -- full DiscoveryResult as JSON
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS concepts (
		id TEXT PRIMARY KEY,
		cache_key TEXT NOT NULL,
		label TEXT NOT NULL,
		discipline TEXT,
		definition TEXT,
		brief_summary TEXT,
		similarity REAL,                    -- NULL for root nodes
		credibility REAL NOT NULL,
		source TEXT NOT NULL,
		source_url TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (cache_key) REFERENCES results(cache_key) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS relations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cache_key TEXT NOT NULL,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		relation_type TEXT NOT NULL,
		weight REAL NOT NULL,
		reasoning TEXT,
		FOREIGN KEY (cache_key) REFERENCES results(cache_key) ON DELETE CASCADE,
		UNIQUE(cache_key, source_id, target_id)
	);

	CREATE INDEX IF NOT EXISTS idx_concepts_label ON concepts(label);
	CREATE INDEX IF NOT EXISTS idx_concepts_discipline ON concepts(discipline);
	CREATE INDEX IF NOT EXISTS idx_concepts_key ON concepts(cache_key);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveResult upserts the result row and rewrites its concept/relation rows in
// one transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, key string, result *graph.DiscoveryResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO results (cache_key, mode, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET mode=excluded.mode, payload=excluded.payload, created_at=excluded.created_at`,
		key, result.Metadata.Mode, string(payload), now); err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}

	// Replace child rows wholesale; results are never partially updated.
	if _, err := tx.ExecContext(ctx, `DELETE FROM concepts WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("clear concepts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("clear relations: %w", err)
	}

	for _, n := range result.Nodes {
		var sim any
		if n.Similarity != nil {
			sim = *n.Similarity
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO concepts (id, cache_key, label, discipline, definition, brief_summary, similarity, credibility, source, source_url, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, key, n.Label, n.Discipline, n.Definition, n.BriefSummary, sim, n.Credibility, string(n.Source), n.SourceURL, now); err != nil {
			return fmt.Errorf("insert concept %s: %w", n.ID, err)
		}
	}

	for _, e := range result.Edges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO relations (cache_key, source_id, target_id, relation_type, weight, reasoning)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			key, e.Source, e.Target, e.RelationType, e.Weight, e.Reasoning); err != nil {
			return fmt.Errorf("insert relation %s->%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadResult reads the stored JSON payload for key.
func (s *SQLiteStore) LoadResult(ctx context.Context, key string) (*graph.DiscoveryResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM results WHERE cache_key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}

	var result graph.DiscoveryResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

// SearchConcepts matches labels case-insensitively with a LIKE scan.
func (s *SQLiteStore) SearchConcepts(ctx context.Context, keyword string, limit int) ([]graph.ConceptNode, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, discipline, definition, brief_summary, similarity, credibility, source, source_url
		 FROM concepts WHERE label LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY created_at DESC LIMIT ?`, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("search concepts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []graph.ConceptNode
	for rows.Next() {
		var n graph.ConceptNode
		var sim sql.NullFloat64
		var source string
		if err := rows.Scan(&n.ID, &n.Label, &n.Discipline, &n.Definition, &n.BriefSummary, &sim, &n.Credibility, &source, &n.SourceURL); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		if sim.Valid {
			n.Similarity = graph.Float64Ptr(sim.Float64)
		}
		n.Source = graph.SourceKind(source)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// Disciplines lists distinct non-empty discipline tags.
func (s *SQLiteStore) Disciplines(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT discipline FROM concepts WHERE discipline != '' ORDER BY discipline`)
	if err != nil {
		return nil, fmt.Errorf("query disciplines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var disciplines []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan discipline: %w", err)
		}
		disciplines = append(disciplines, d)
	}
	return disciplines, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
