// Package lifecycle orchestrates bulk import, health validation, and
// stats aggregation over the registry, router, and converter. The
// registry is explicit state owned by the Manager and threaded through
// calls; there is no process-wide singleton.
package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"docindex/internal/converter"
	"docindex/internal/domain"
	"docindex/internal/folders"
	"docindex/internal/ports"
	"docindex/internal/router"
)

// Config wires a Manager. Store, Tokenizer, and Root are required;
// Classifier and Index are optional (tier 3 falls through without a
// classifier, search is unavailable without an index).
type Config struct {
	Root     string // documents root
	TwinsDir string // where JSON twins are written
	Store    ports.RegistryStore
	Locker   ports.Locker
	Index    ports.SearchIndex

	Tokenizer  ports.Tokenizer
	Classifier ports.Classifier

	RulesPath           string
	ConfidenceThreshold float64
	SimilarityThreshold float64
	TargetRatio         float64
	Workers             int
}

// Manager owns the registry for the life of a run.
type Manager struct {
	root     string
	twinsDir string
	store    ports.RegistryStore
	locker   ports.Locker
	index    ports.SearchIndex

	tokenizer ports.Tokenizer
	converter *converter.Converter
	router    *router.Router
	folders   *folders.Manager
	workers   int

	mu           sync.Mutex // guards registry for the in-process writer
	registry     *domain.Registry
	loadWarnings []domain.Warning
}

// New loads the registry and assembles the engine around it.
func New(cfg Config) (*Manager, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("documents root is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("registry store is required")
	}
	if cfg.Tokenizer == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}

	registry, warnings, err := cfg.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	exact, rules, err := router.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	folderMgr := folders.NewManager(registry.Categories(), cfg.SimilarityThreshold)

	var routerOpts []router.Option
	if cfg.Classifier != nil {
		routerOpts = append(routerOpts, router.WithClassifier(cfg.Classifier))
	}
	if cfg.ConfidenceThreshold > 0 {
		routerOpts = append(routerOpts, router.WithConfidenceThreshold(cfg.ConfidenceThreshold))
	}

	var converterOpts []converter.Option
	if cfg.TargetRatio > 0 {
		converterOpts = append(converterOpts, converter.WithTargetRatio(cfg.TargetRatio))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	twinsDir := cfg.TwinsDir
	if twinsDir == "" {
		twinsDir = filepath.Join(filepath.Dir(cfg.Store.Path()), "twins")
	}

	return &Manager{
		root:         cfg.Root,
		twinsDir:     twinsDir,
		store:        cfg.Store,
		locker:       cfg.Locker,
		index:        cfg.Index,
		tokenizer:    cfg.Tokenizer,
		converter:    converter.New(cfg.Tokenizer, converterOpts...),
		router:       router.New(exact, rules, folderMgr, routerOpts...),
		folders:      folderMgr,
		workers:      workers,
		registry:     registry,
		loadWarnings: warnings,
	}, nil
}

// Snapshot returns a deep copy of the current registry for lock-free
// readers.
func (m *Manager) Snapshot() *domain.Registry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Snapshot()
}

// Map builds the category/document tree over the current registry.
func (m *Manager) Map() *domain.MapNode {
	return m.Snapshot().BuildMap()
}

// LoadWarnings returns warnings emitted while loading the registry
// (e.g. a corrupt file that was reinitialized).
func (m *Manager) LoadWarnings() []domain.Warning {
	return append([]domain.Warning(nil), m.loadWarnings...)
}

// Router exposes the tiered router, mainly for the MCP classify tool.
func (m *Manager) Router() *router.Router {
	return m.router
}

// acquireLock takes the cross-process write lock when one is configured.
func (m *Manager) acquireLock() (func(), error) {
	if m.locker == nil {
		return func() {}, nil
	}
	return m.locker.Acquire()
}

// commit persists the registry under the in-process writer lock. Called
// at checkpoints only, never mid-entry.
func (m *Manager) commit() error {
	if err := m.store.Save(m.registry); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}
	return nil
}

// resyncIndex rebuilds the search index from the current snapshot.
// Index failures never fail the batch that triggered the resync.
func (m *Manager) resyncIndex() *domain.Warning {
	if m.index == nil {
		return nil
	}
	if _, err := m.index.Resync(m.Snapshot()); err != nil {
		w := domain.Warningf(domain.WarnSkippedFile, "search index resync failed: %v", err)
		return &w
	}
	return nil
}

// fileExists checks a path relative to the documents root.
func (m *Manager) fileExists(relPath string) bool {
	info, err := os.Stat(filepath.Join(m.root, relPath))
	return err == nil && !info.IsDir()
}
