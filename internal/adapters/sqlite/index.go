// Package sqlite provides the derived search index over registry
// entries. The index is a cache rebuilt from the registry JSON after
// each mutating batch; it is never the source of truth.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docindex/internal/domain"
	"docindex/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Index implements ports.SearchIndex using SQLite
type Index struct {
	db     *sql.DB
	dbPath string
}

var _ ports.SearchIndex = (*Index)(nil)

// NewIndex creates a new SQLite index
func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index database at dbPath.
func (idx *Index) Open(dbPath string) error {
	if len(dbPath) > 0 && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}
	idx.dbPath = dbPath

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Performance pragmas + schema in a single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS entries (
			category TEXT NOT NULL,
			id TEXT NOT NULL,
			path TEXT NOT NULL,
			md_tokens INTEGER NOT NULL,
			json_tokens INTEGER NOT NULL,
			has_json INTEGER NOT NULL,
			PRIMARY KEY (category, id)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entries_path ON entries(path);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	_, err = db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		schemaVersion)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Resync replaces the index contents with the given registry snapshot.
func (idx *Index) Resync(registry *domain.Registry) (*ports.IndexStats, error) {
	stats := &ports.IndexStats{}

	tx, err := idx.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin resync: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to clear index: %w", err)
	}
	if removed, err := result.RowsAffected(); err == nil {
		stats.Removed = int(removed)
	}

	stmt, err := tx.Prepare(`INSERT INTO entries
		(category, id, path, md_tokens, json_tokens, has_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range registry.AllEntries() {
		hasJSON := 0
		if entry.HasJSON {
			hasJSON = 1
		}
		if _, err := stmt.Exec(entry.Category, entry.ID, entry.Path,
			entry.Tokens.MD, entry.Tokens.JSON, hasJSON); err != nil {
			return nil, fmt.Errorf("failed to index %s/%s: %w", entry.Category, entry.ID, err)
		}
		stats.EntriesIndexed++
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to update sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resync: %w", err)
	}
	return stats, nil
}

// Search matches query against entry ids, categories, and paths.
func (idx *Index) Search(query string) ([]ports.SearchHit, error) {
	pattern := "%" + query + "%"
	rows, err := idx.db.Query(`
		SELECT category, id, path,
			CASE
				WHEN id LIKE ? THEN 'id'
				WHEN category LIKE ? THEN 'category'
				ELSE 'path'
			END AS matched
		FROM entries
		WHERE id LIKE ? OR category LIKE ? OR path LIKE ?
		ORDER BY category, id`,
		pattern, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var hits []ports.SearchHit
	for rows.Next() {
		var hit ports.SearchHit
		if err := rows.Scan(&hit.Category, &hit.ID, &hit.Path, &hit.Matched); err != nil {
			return nil, fmt.Errorf("failed to scan hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// Lookup returns the indexed path for (category, id), if present.
func (idx *Index) Lookup(category, id string) (ports.SearchHit, bool, error) {
	var hit ports.SearchHit
	err := idx.db.QueryRow(
		`SELECT category, id, path FROM entries WHERE category = ? AND id = ?`,
		category, id).Scan(&hit.Category, &hit.ID, &hit.Path)
	if err == sql.ErrNoRows {
		return ports.SearchHit{}, false, nil
	}
	if err != nil {
		return ports.SearchHit{}, false, fmt.Errorf("lookup failed: %w", err)
	}
	hit.Matched = "id"
	return hit, true, nil
}
