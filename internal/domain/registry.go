package domain

import (
	"fmt"
	"sort"
	"time"
)

// CurrentVersion is the registry schema version written by this build.
const CurrentVersion = 1

// Registry is the versioned index of all tracked documents, keyed by
// category and id. It is plain in-memory state: persistence and locking
// live behind ports.RegistryStore, and all mutation goes through the
// single owner (the lifecycle manager).
type Registry struct {
	Version     int
	LastUpdated time.Time
	Documents   map[string]map[string]RegistryEntry
}

// NewRegistry returns an empty registry at the current schema version.
func NewRegistry() *Registry {
	return &Registry{
		Version:   CurrentVersion,
		Documents: make(map[string]map[string]RegistryEntry),
	}
}

// PlacementConflictError reports an upsert whose (category, id) already
// exists with a different path. Conflicts are surfaced to the operator and
// never auto-resolved.
type PlacementConflictError struct {
	Category     string
	ID           string
	ExistingPath string
	NewPath      string
}

func (e *PlacementConflictError) Error() string {
	return fmt.Sprintf("placement conflict for %s/%s: registered at %s, upsert has %s",
		e.Category, e.ID, e.ExistingPath, e.NewPath)
}

// Upsert inserts or updates an entry. It is idempotent: re-upserting an
// unchanged entry returns changed=false and leaves LastUpdated alone.
// An existing (category, id) with a different path yields a
// PlacementConflictError and no mutation.
func (r *Registry) Upsert(entry RegistryEntry) (changed bool, err error) {
	if entry.Category == "" || entry.ID == "" {
		return false, fmt.Errorf("entry must have category and id, got %q/%q", entry.Category, entry.ID)
	}

	byID, ok := r.Documents[entry.Category]
	if !ok {
		byID = make(map[string]RegistryEntry)
		r.Documents[entry.Category] = byID
	}

	existing, exists := byID[entry.ID]
	if exists {
		if existing.Path != entry.Path {
			return false, &PlacementConflictError{
				Category:     entry.Category,
				ID:           entry.ID,
				ExistingPath: existing.Path,
				NewPath:      entry.Path,
			}
		}
		if existing.Equal(entry) {
			return false, nil
		}
	}

	if entry.LastUpdated.IsZero() {
		entry.LastUpdated = time.Now()
	}
	byID[entry.ID] = entry
	// The registry timestamp only moves forward: upserts carrying older
	// snapshot timestamps (marker refreshes) must not rewind it.
	if entry.LastUpdated.After(r.LastUpdated) {
		r.LastUpdated = entry.LastUpdated
	}
	return true, nil
}

// Get returns the entry for (category, id), if present.
func (r *Registry) Get(category, id string) (RegistryEntry, bool) {
	byID, ok := r.Documents[category]
	if !ok {
		return RegistryEntry{}, false
	}
	entry, ok := byID[id]
	return entry, ok
}

// GetByPath returns the entry registered at the given relative path.
func (r *Registry) GetByPath(path string) (RegistryEntry, bool) {
	for _, byID := range r.Documents {
		for _, entry := range byID {
			if entry.Path == path {
				return entry, true
			}
		}
	}
	return RegistryEntry{}, false
}

// HasID reports whether any category contains an entry with the given
// id. Dependency references are ids without categories, so resolution
// searches the whole registry.
func (r *Registry) HasID(id string) bool {
	for _, byID := range r.Documents {
		if _, ok := byID[id]; ok {
			return true
		}
	}
	return false
}

// Remove deletes the entry for (category, id). Empty categories are
// dropped so Categories never reports ghosts.
func (r *Registry) Remove(category, id string) bool {
	byID, ok := r.Documents[category]
	if !ok {
		return false
	}
	if _, ok := byID[id]; !ok {
		return false
	}
	delete(byID, id)
	if len(byID) == 0 {
		delete(r.Documents, category)
	}
	r.LastUpdated = time.Now()
	return true
}

// Prune removes entries whose underlying file no longer exists, as
// reported by the exists check. Returns the removed entries.
func (r *Registry) Prune(exists func(path string) bool) []RegistryEntry {
	var removed []RegistryEntry
	for category, byID := range r.Documents {
		for id, entry := range byID {
			if !exists(entry.Path) {
				removed = append(removed, entry)
				delete(byID, id)
			}
		}
		if len(byID) == 0 {
			delete(r.Documents, category)
		}
	}
	if len(removed) > 0 {
		r.LastUpdated = time.Now()
	}
	sort.Slice(removed, func(i, j int) bool {
		if removed[i].Category != removed[j].Category {
			return removed[i].Category < removed[j].Category
		}
		return removed[i].ID < removed[j].ID
	})
	return removed
}

// Count returns the total number of entries across all categories.
func (r *Registry) Count() int {
	n := 0
	for _, byID := range r.Documents {
		n += len(byID)
	}
	return n
}

// Categories returns all category names in sorted order.
func (r *Registry) Categories() []string {
	categories := make([]string, 0, len(r.Documents))
	for category := range r.Documents {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Entries returns the entries of one category sorted by id.
func (r *Registry) Entries(category string) []RegistryEntry {
	byID, ok := r.Documents[category]
	if !ok {
		return nil
	}
	entries := make([]RegistryEntry, 0, len(byID))
	for _, entry := range byID {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// AllEntries returns every entry sorted by category, then id.
func (r *Registry) AllEntries() []RegistryEntry {
	var entries []RegistryEntry
	for _, category := range r.Categories() {
		entries = append(entries, r.Entries(category)...)
	}
	return entries
}

// Snapshot returns a deep copy for lock-free readers. Stats and Validate
// operate on snapshots so they never block the writer.
func (r *Registry) Snapshot() *Registry {
	snapshot := &Registry{
		Version:     r.Version,
		LastUpdated: r.LastUpdated,
		Documents:   make(map[string]map[string]RegistryEntry, len(r.Documents)),
	}
	for category, byID := range r.Documents {
		copied := make(map[string]RegistryEntry, len(byID))
		for id, entry := range byID {
			entry.Dependencies = slicesClone(entry.Dependencies)
			entry.Markers = slicesClone(entry.Markers)
			copied[id] = entry
		}
		snapshot.Documents[category] = copied
	}
	return snapshot
}

func slicesClone(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
