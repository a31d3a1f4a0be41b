package lifecycle

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"docindex/internal/application"
	"docindex/internal/domain"
	"docindex/internal/router"
)

// ImportReport summarizes one import run
type ImportReport struct {
	Scanned   int
	Imported  int
	Skipped   int // already registered by path
	Routed    map[domain.Tier]int
	Conflicts []domain.Warning
	Warnings  []domain.Warning
	Errors    []*application.FileError
	Duration  time.Duration
}

// importResult carries one converted document from a worker to the
// single writer.
type importResult struct {
	entry    domain.RegistryEntry
	twinJSON []byte
	tier     domain.Tier
	warnings []domain.Warning
}

// Import walks the documents root and registers every markdown file not
// already present by path. Conversion runs on a bounded worker pool; all
// upserts funnel through the single writer, which commits after each
// successful upsert. Re-running Import on an unchanged tree performs
// zero writes.
func (m *Manager) Import(ctx context.Context) (*ImportReport, error) {
	start := time.Now()
	report := &ImportReport{Routed: make(map[domain.Tier]int)}
	report.Warnings = append(report.Warnings, m.loadWarnings...)

	release, err := m.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	pending, scanned, walkErrs := m.collectPending()
	report.Scanned = scanned
	report.Skipped = scanned - len(pending)
	report.Errors = append(report.Errors, walkErrs...)

	if len(pending) == 0 {
		report.Duration = time.Since(start)
		return report, nil
	}

	results := make(chan importResult)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	var walkGroup errgroup.Group
	walkGroup.Go(func() error {
		defer close(results)
		for _, relPath := range pending {
			relPath := relPath
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				result, ferr := m.convertOne(gctx, relPath)
				if ferr != nil {
					m.mu.Lock()
					report.Errors = append(report.Errors, ferr)
					m.mu.Unlock()
					return nil // partial-failure: skip, never abort the batch
				}
				select {
				case results <- *result:
				case <-gctx.Done():
				}
				return nil
			})
		}
		return g.Wait()
	})

	// Single writer: upserts are serialized and committed per entry so
	// cancellation never leaves the registry half-written.
	var saveErr error
	for result := range results {
		if saveErr != nil {
			continue // drain
		}
		saveErr = m.writeEntry(result, report)
	}
	if err := walkGroup.Wait(); err != nil && saveErr == nil {
		saveErr = err
	}
	if saveErr != nil {
		return report, saveErr
	}

	if report.Imported > 0 {
		if w := m.resyncIndex(); w != nil {
			report.Warnings = append(report.Warnings, *w)
		}
	}

	if err := ctx.Err(); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	report.Duration = time.Since(start)
	return report, nil
}

// collectPending walks the tree and returns relative paths of markdown
// files not yet registered, in sorted order for deterministic runs.
func (m *Manager) collectPending() (pending []string, scanned int, errs []*application.FileError) {
	registered := make(map[string]bool)
	m.mu.Lock()
	for _, entry := range m.registry.AllEntries() {
		registered[entry.Path] = true
	}
	m.mu.Unlock()

	filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, &application.FileError{Path: path, Err: err})
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != m.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		relPath, relErr := filepath.Rel(m.root, path)
		if relErr != nil {
			return nil
		}
		scanned++
		if !registered[relPath] {
			pending = append(pending, relPath)
		}
		return nil
	})

	sort.Strings(pending)
	return pending, scanned, errs
}

// convertOne reads, converts, and routes a single document. It has no
// shared mutable state beyond the router's counters and is safe to run
// in parallel.
func (m *Manager) convertOne(ctx context.Context, relPath string) (*importResult, *application.FileError) {
	data, err := os.ReadFile(filepath.Join(m.root, relPath))
	if err != nil {
		return nil, &application.FileError{Path: relPath, Err: err}
	}
	content := string(data)
	filename := filepath.Base(relPath)

	conv, err := m.converter.ToJSON(relPath, content)
	if err != nil {
		return nil, &application.FileError{Path: relPath, Err: err}
	}

	result := &importResult{twinJSON: conv.JSON}
	if conv.Warning != nil {
		result.warnings = append(result.warnings, *conv.Warning)
	}

	classification := m.routeWithFolderHint(ctx, relPath, filename, content, conv.Twin.Title)
	result.tier = classification.Tier

	deps := domain.ExtractDependencies(content)
	sort.Strings(deps)

	result.entry = domain.RegistryEntry{
		ID:           domain.DocumentID(filename),
		Category:     classification.Category,
		Path:         relPath,
		Tokens:       domain.TokenCounts{MD: conv.MDTokens, JSON: conv.JSONTokens},
		HasJSON:      true,
		Dependencies: deps,
	}
	return result, nil
}

// routeWithFolderHint treats the file's containing folder as an implicit
// tier-1 hint: a file already inside a category folder keeps that
// category without consulting the router.
func (m *Manager) routeWithFolderHint(ctx context.Context, relPath, filename, content, title string) domain.ClassificationResult {
	if dir := filepath.Dir(relPath); dir != "." {
		category := domain.Slugify(strings.Split(filepath.ToSlash(dir), "/")[0])
		if category != "" {
			m.folders.Observe(category)
			return domain.ClassificationResult{
				Tier:       domain.TierExact,
				Category:   category,
				Confidence: 1.0,
			}
		}
	}

	hint := title
	if hint == "" {
		hint = domain.DocumentID(filename)
	}
	classification := m.router.Route(ctx, router.Input{
		Filename: filename,
		Content:  content,
		Hint:     hint,
	})
	m.folders.Observe(classification.Category)
	return classification
}

// writeEntry is the single writer: it upserts one entry, writes its twin
// beside the registry, and commits the checkpoint.
func (m *Manager) writeEntry(result importResult, report *ImportReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed, err := m.registry.Upsert(result.entry)
	var conflict *domain.PlacementConflictError
	if errors.As(err, &conflict) {
		// Surfaced to the operator, never silently overwritten.
		report.Conflicts = append(report.Conflicts,
			domain.Warningf(domain.WarnPlacementConflict, "%v", conflict))
		return nil
	}
	if err != nil {
		return err
	}
	report.Warnings = append(report.Warnings, result.warnings...)
	if !changed {
		return nil
	}

	if err := m.writeTwin(result.entry, result.twinJSON); err != nil {
		// Twin write failure downgrades the entry, it does not fail the run.
		entry := result.entry
		entry.HasJSON = false
		entry.Tokens.JSON = 0
		m.registry.Upsert(entry)
		report.Warnings = append(report.Warnings,
			domain.Warningf(domain.WarnSkippedFile, "twin for %s not written: %v", entry.Path, err))
	}

	if err := m.commit(); err != nil {
		return err
	}
	report.Imported++
	report.Routed[result.tier]++
	return nil
}

// writeTwin stores the JSON twin under the twins mirror.
func (m *Manager) writeTwin(entry domain.RegistryEntry, twinJSON []byte) error {
	dir := filepath.Join(m.twinsDir, entry.Category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, entry.ID+".json"), twinJSON, 0644)
}
