package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy
var (
	// ErrRegistryCorrupt marks a registry file that could not be parsed.
	// Loads recover by reinitializing an empty registry; the sentinel
	// surfaces only in the accompanying warning.
	ErrRegistryCorrupt = errors.New("registry corrupt")

	// ErrClassifierUnavailable marks a tier-3 classifier failure or
	// timeout. Routing treats it as "no confident match" and falls
	// through to tier 4; it never aborts a routing call.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrMissingDependency marks a validation run that found entries
	// referencing ids absent from the registry. Non-fatal to the run,
	// but callers exit nonzero.
	ErrMissingDependency = errors.New("missing dependency")

	ErrNotFound = errors.New("not found")
)

// ValidationError represents a command input validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FileError records a single unreadable or corrupt file skipped during a
// batch. Import and Validate collect these per run instead of aborting
// the remaining files.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
