package ports

import "docindex/internal/domain"

// SearchHit is one match from the derived search index
type SearchHit struct {
	Category string
	ID       string
	Path     string
	Matched  string // the field that matched (id, category, or path)
}

// IndexStats holds statistics from a resync operation
type IndexStats struct {
	EntriesIndexed int
	Removed        int
}

// SearchIndex is the derived SQLite cache over registry entries that
// powers fast lookup for the map command and the MCP search tool. It is
// rebuildable at any time from the registry JSON and never the source of
// truth.
type SearchIndex interface {
	Open(dbPath string) error
	Close() error

	// Resync replaces the index contents with the given snapshot.
	Resync(registry *domain.Registry) (*IndexStats, error)

	// Search matches query against entry ids, categories, and paths.
	Search(query string) ([]SearchHit, error)

	// Lookup returns the indexed path for (category, id), if present.
	Lookup(category, id string) (SearchHit, bool, error)
}
