package domain

import (
	"slices"
	"time"
)

// TokenCounts holds the token cost of a document in both representations.
type TokenCounts struct {
	MD   int
	JSON int
}

// RegistryEntry represents a single tracked document inside the registry
type RegistryEntry struct {
	ID           string      // Slug derived from the filename stem
	Category     string      // Category slug, matches the physical subfolder
	Path         string      // Relative path from the documents root
	Tokens       TokenCounts // Token cost of the markdown source and JSON twin
	HasJSON      bool        // True when a JSON twin exists
	LastUpdated  time.Time
	Dependencies []string // IDs of documents this one references
	Markers      []string // Unresolved TODO/FIXME markers from the last validation
}

// Key returns the (category, id) pair that uniquely identifies an entry.
func (e RegistryEntry) Key() (string, string) {
	return e.Category, e.ID
}

// Equal reports whether two entries describe the same document state.
// LastUpdated is excluded so that re-upserting an unchanged entry can be
// detected as a no-op.
func (e RegistryEntry) Equal(other RegistryEntry) bool {
	return e.ID == other.ID &&
		e.Category == other.Category &&
		e.Path == other.Path &&
		e.Tokens == other.Tokens &&
		e.HasJSON == other.HasJSON &&
		slices.Equal(e.Dependencies, other.Dependencies) &&
		slices.Equal(e.Markers, other.Markers)
}

// HealthStatus classifies the health of a registry entry
type HealthStatus string

const (
	StatusHealthy           HealthStatus = "healthy"
	StatusStale             HealthStatus = "stale"
	StatusIncomplete        HealthStatus = "incomplete"
	StatusMisplaced         HealthStatus = "misplaced"
	StatusMissingDependency HealthStatus = "missing-dependency"
	StatusBroken            HealthStatus = "broken"
)

// IsError reports whether the status should fail a validation run.
// Only missing dependencies are error severity; everything else is advisory.
func (s HealthStatus) IsError() bool {
	return s == StatusMissingDependency
}

// HealthReport describes the validation outcome for one entry
type HealthReport struct {
	Category string
	ID       string
	Path     string
	Status   HealthStatus
	Detail   string
}
