package ports

import "docindex/internal/domain"

// RegistryStore persists the registry as one JSON file at a fixed path.
type RegistryStore interface {
	// Load reads the registry from disk. A missing or corrupt file
	// self-heals: Load returns a fresh empty registry plus a
	// registry-corrupt warning instead of failing.
	Load() (*domain.Registry, []domain.Warning, error)

	// Save persists the registry atomically (write to a temp file, then
	// rename) while holding the advisory write lock.
	Save(registry *domain.Registry) error

	// Path returns the registry file location.
	Path() string
}

// Locker serializes the read-modify-write-persist cycle across
// processes. One process owns the lock for the duration of a mutating
// batch.
type Locker interface {
	// Acquire takes the advisory lock, returning a release function.
	Acquire() (release func(), err error)
}
