package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"docindex/internal/application"
	"docindex/internal/domain"
	"docindex/internal/router"
)

// ValidateOptions controls a validation run
type ValidateOptions struct {
	// Prune removes entries whose underlying file no longer exists
	// instead of reporting them broken.
	Prune bool
}

// ValidationReport is the health report for the whole registry
type ValidationReport struct {
	Reports  []domain.HealthReport
	Healthy  int
	Total    int
	Pruned   []domain.RegistryEntry
	Warnings []domain.Warning
	Errors   []*application.FileError
	Duration time.Duration
}

// Score returns the healthy/total ratio, 1 for an empty registry.
func (r *ValidationReport) Score() float64 {
	if r.Total == 0 {
		return 1
	}
	return float64(r.Healthy) / float64(r.Total)
}

// HasErrors reports whether any entry has an error-severity status.
// Callers exit nonzero when this is true.
func (r *ValidationReport) HasErrors() bool {
	for _, report := range r.Reports {
		if report.Status.IsError() {
			return true
		}
	}
	return false
}

// Validate checks every entry for freshness, completeness, placement,
// and dependency resolution. Checks run against an immutable snapshot so
// they never block a writer; marker refreshes and pruning are applied in
// one batch at the end.
func (m *Manager) Validate(ctx context.Context, opts ValidateOptions) (*ValidationReport, error) {
	start := time.Now()
	report := &ValidationReport{}
	report.Warnings = append(report.Warnings, m.loadWarnings...)

	snapshot := m.Snapshot()
	var refreshed []domain.RegistryEntry

	for _, entry := range snapshot.AllEntries() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		health, markers, ferr := m.checkEntry(snapshot, entry)
		if ferr != nil {
			report.Errors = append(report.Errors, ferr)
		}
		report.Total++
		if health.Status == domain.StatusHealthy {
			report.Healthy++
		}
		report.Reports = append(report.Reports, health)

		if health.Status != domain.StatusBroken && !equalStrings(entry.Markers, markers) {
			entry.Markers = markers
			refreshed = append(refreshed, entry)
		}
	}

	if len(refreshed) > 0 || opts.Prune {
		if err := m.applyValidation(refreshed, opts.Prune, report); err != nil {
			return report, err
		}
		if len(report.Pruned) > 0 {
			if w := m.resyncIndex(); w != nil {
				report.Warnings = append(report.Warnings, *w)
			}
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// checkEntry computes the health of one entry. The returned status is
// the most severe finding: broken > missing-dependency > stale >
// incomplete > misplaced.
func (m *Manager) checkEntry(snapshot *domain.Registry, entry domain.RegistryEntry) (domain.HealthReport, []string, *application.FileError) {
	health := domain.HealthReport{
		Category: entry.Category,
		ID:       entry.ID,
		Path:     entry.Path,
		Status:   domain.StatusHealthy,
	}

	fullPath := filepath.Join(m.root, entry.Path)
	info, err := os.Stat(fullPath)
	if err != nil {
		health.Status = domain.StatusBroken
		health.Detail = "file missing or unreadable"
		return health, nil, &application.FileError{Path: entry.Path, Err: err}
	}

	// Dependencies: error severity, checked first.
	for _, dep := range entry.Dependencies {
		if !snapshot.HasID(dep) {
			health.Status = domain.StatusMissingDependency
			health.Detail = "references unknown document id " + dep
			return health, entry.Markers, nil
		}
	}

	// Freshness: stale iff the file changed after the entry.
	if info.ModTime().After(entry.LastUpdated) {
		health.Status = domain.StatusStale
		health.Detail = "file modified after last registry update"
		return health, entry.Markers, nil
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		health.Status = domain.StatusBroken
		health.Detail = "file unreadable"
		return health, nil, &application.FileError{Path: entry.Path, Err: err}
	}
	content := string(data)
	outline := domain.ParseOutline(content)

	// Completeness: unresolved markers or empty required sections.
	markers := outline.Markers
	if len(markers) > 0 {
		health.Status = domain.StatusIncomplete
		health.Detail = markers[0]
		return health, markers, nil
	}
	for _, section := range outline.Sections {
		if section.IsEmpty() {
			health.Status = domain.StatusIncomplete
			health.Detail = "empty section: " + section.Title
			return health, markers, nil
		}
	}

	// Placement: re-run tiers 1-2; disagreement is a suggestion, never
	// an automatic move.
	if suggested, ok := m.router.RoutePlacement(router.Input{
		Filename: filepath.Base(entry.Path),
		Content:  content,
	}); ok && suggested != entry.Category {
		health.Status = domain.StatusMisplaced
		health.Detail = "tiers 1-2 suggest category " + suggested
		return health, markers, nil
	}

	return health, markers, nil
}

// applyValidation commits marker refreshes and pruning in one locked
// batch.
func (m *Manager) applyValidation(refreshed []domain.RegistryEntry, prune bool, report *ValidationReport) error {
	release, err := m.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	for _, entry := range refreshed {
		if upserted, err := m.registry.Upsert(entry); err == nil && upserted {
			changed = true
		}
	}
	if prune {
		report.Pruned = m.registry.Prune(m.fileExists)
		if len(report.Pruned) > 0 {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return m.commit()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
