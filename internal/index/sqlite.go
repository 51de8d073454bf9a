// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kosmos/synesis/pkg/types"
)

const (
	dbFile            = "index.db"
	defaultCollection = "arxiv_papers"
)

// SQLiteStore is a persistent vector store backed by SQLite. Embeddings
// are stored as JSON arrays and ranked with brute-force cosine similarity
// at query time, which is adequate at the corpus sizes one machine
// downloads from arXiv.
type SQLiteStore struct {
	db         *sql.DB
	collection string
}

// NewSQLiteStore opens or creates the store database at
// {embeddings_dir}/index.db, creating the schema if needed.
func NewSQLiteStore(cfg types.IndexConfig) (*SQLiteStore, error) {
	dir := cfg.EmbeddingsDir
	if dir == "" {
		dir = filepath.Join("data", "embeddings")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating embeddings directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}

	s := &SQLiteStore{db: db, collection: collection}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT NOT NULL,
			collection TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			text TEXT NOT NULL,
			metadata TEXT,
			embedding TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_paper_id ON chunks(collection, paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ReplacePaper removes all chunks of paperID and inserts the given ones
// inside a single transaction, so a store-level failure leaves the
// previous state intact.
func (s *SQLiteStore) ReplacePaper(ctx context.Context, paperID string, chunks []types.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE collection = ? AND paper_id = ?`,
		s.collection, paperID,
	); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, collection, paper_id, idx, text, metadata, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		metaJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", c.ID, err)
		}
		embJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("marshaling embedding for %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, s.collection, c.PaperID, c.Index, c.Text,
			string(metaJSON), string(embJSON),
		); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Query scans the collection, scores every chunk against the vector, and
// returns the top n by descending cosine similarity.
func (s *SQLiteStore) Query(ctx context.Context, vector []float64, n int) ([]types.ScoredChunk, error) {
	if n <= 0 {
		return nil, fmt.Errorf("result count must be positive, got %d", n)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, idx, text, metadata, embedding
		 FROM chunks WHERE collection = ?`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var scored []types.ScoredChunk
	for rows.Next() {
		var (
			c        types.Chunk
			metaJSON sql.NullString
			embJSON  string
		)
		if err := rows.Scan(&c.ID, &c.PaperID, &c.Index, &c.Text, &metaJSON, &embJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		if metaJSON.Valid {
			if err := json.Unmarshal([]byte(metaJSON.String), &c.Metadata); err != nil {
				return nil, fmt.Errorf("parsing metadata for %s: %w", c.ID, err)
			}
		}
		var emb []float64
		if err := json.Unmarshal([]byte(embJSON), &emb); err != nil {
			return nil, fmt.Errorf("parsing embedding for %s: %w", c.ID, err)
		}
		scored = append(scored, types.ScoredChunk{Chunk: c, Score: cosine(vector, emb)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunk rows: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored, nil
}
