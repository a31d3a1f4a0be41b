// Package registryfile persists the document registry as one JSON file,
// with atomic saves and an advisory lock for the single-writer cycle.
package registryfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docindex/internal/domain"
	"docindex/internal/ports"
)

// Store implements ports.RegistryStore on a JSON file
type Store struct {
	path string
}

var _ ports.RegistryStore = (*Store)(nil)

// NewStore creates a Store for the registry file at path.
func NewStore(path string) *Store {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	return &Store{path: path}
}

// Path returns the registry file location.
func (s *Store) Path() string {
	return s.path
}

// persistedRegistry is the on-disk schema
type persistedRegistry struct {
	Version       int                                  `json:"version"`
	LastUpdated   time.Time                            `json:"last_updated"`
	DocumentCount int                                  `json:"document_count"`
	Documents     map[string]map[string]persistedEntry `json:"documents"`
}

type persistedEntry struct {
	Path         string          `json:"path"`
	Tokens       persistedTokens `json:"tokens"`
	JSON         bool            `json:"json"`
	Dependencies []string        `json:"dependencies"`
	LastUpdated  time.Time       `json:"last_updated"`
	Markers      []string        `json:"markers,omitempty"`
}

type persistedTokens struct {
	MD   int `json:"md"`
	JSON int `json:"json"`
}

// Load reads the registry. A missing or corrupt file self-heals: the
// caller gets a fresh empty registry plus a registry-corrupt warning,
// never an error.
func (s *Store) Load() (*domain.Registry, []domain.Warning, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewRegistry(), []domain.Warning{
				domain.Warningf(domain.WarnRegistryCorrupt,
					"registry file %s missing, initialized empty registry", s.path),
			}, nil
		}
		return nil, nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var persisted persistedRegistry
	if err := json.Unmarshal(data, &persisted); err != nil {
		return domain.NewRegistry(), []domain.Warning{
			domain.Warningf(domain.WarnRegistryCorrupt,
				"registry file %s unparseable (%v), reinitialized empty registry", s.path, err),
		}, nil
	}

	registry := &domain.Registry{
		Version:     persisted.Version,
		LastUpdated: persisted.LastUpdated,
		Documents:   make(map[string]map[string]domain.RegistryEntry, len(persisted.Documents)),
	}
	if registry.Version == 0 {
		registry.Version = domain.CurrentVersion
	}
	for category, byID := range persisted.Documents {
		entries := make(map[string]domain.RegistryEntry, len(byID))
		for id, pe := range byID {
			entries[id] = domain.RegistryEntry{
				ID:           id,
				Category:     category,
				Path:         pe.Path,
				Tokens:       domain.TokenCounts{MD: pe.Tokens.MD, JSON: pe.Tokens.JSON},
				HasJSON:      pe.JSON,
				LastUpdated:  pe.LastUpdated,
				Dependencies: pe.Dependencies,
				Markers:      pe.Markers,
			}
		}
		registry.Documents[category] = entries
	}
	return registry, nil, nil
}

// Save persists the registry atomically: marshal to a temp file in the
// same directory, then rename over the target. document_count is always
// recomputed so the persisted invariant holds.
func (s *Store) Save(registry *domain.Registry) error {
	persisted := persistedRegistry{
		Version:       registry.Version,
		LastUpdated:   registry.LastUpdated,
		DocumentCount: registry.Count(),
		Documents:     make(map[string]map[string]persistedEntry, len(registry.Documents)),
	}
	for category, byID := range registry.Documents {
		entries := make(map[string]persistedEntry, len(byID))
		for id, entry := range byID {
			entries[id] = persistedEntry{
				Path:         entry.Path,
				Tokens:       persistedTokens{MD: entry.Tokens.MD, JSON: entry.Tokens.JSON},
				JSON:         entry.HasJSON,
				Dependencies: entry.Dependencies,
				LastUpdated:  entry.LastUpdated,
				Markers:      entry.Markers,
			}
		}
		persisted.Documents[category] = entries
	}

	// MarshalIndent sorts map keys, so identical registries always
	// canonicalize to identical bytes.
	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp registry: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp registry: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}
