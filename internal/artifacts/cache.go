// Package artifacts persists derived artifacts in a sqlite database so
// re-runs can skip work whose inputs did not change. Rows are keyed by
// node name, concern, and a content hash of the originating fragment;
// the graph uid is carried for provenance.
package artifacts

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/transmute-lang/transmute/internal/store"
)

// Concern identifiers for cached artifact rows.
const (
	ConcernCode  = "code"
	ConcernSlice = "slice"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	graph_uid TEXT NOT NULL,
	node_name TEXT NOT NULL,
	concern TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	payload BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_artifacts_lookup
	ON artifacts(node_name, concern, content_hash);
`

// Cache is a sqlite-backed artifact cache.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path. Use
// ":memory:" for an ephemeral cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize artifact cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Put appends one artifact version. Existing rows are never updated;
// newer rows shadow older ones on lookup.
func (c *Cache) Put(ctx context.Context, graphUID, nodeName, concern, contentHash string, payload []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO artifacts (graph_uid, node_name, concern, content_hash, payload) VALUES (?, ?, ?, ?, ?)`,
		graphUID, nodeName, concern, contentHash, payload)
	if err != nil {
		return fmt.Errorf("failed to store artifact %s/%s: %w", nodeName, concern, err)
	}
	return nil
}

// Get returns the most recent payload for the key, or store.ErrNotFound
// when nothing matches.
func (c *Cache) Get(ctx context.Context, nodeName, concern, contentHash string) ([]byte, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM artifacts WHERE node_name = ? AND concern = ? AND content_hash = ? ORDER BY id DESC LIMIT 1`,
		nodeName, concern, contentHash).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s/%s: %w", nodeName, concern, err)
	}
	return payload, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HashContent returns the hex sha256 of a fragment's text.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
