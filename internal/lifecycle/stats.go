package lifecycle

import (
	"docindex/internal/domain"
	"docindex/internal/folders"
	"docindex/internal/router"
)

// StatsReport composes registry aggregates with router and folder
// manager counters.
type StatsReport struct {
	Registry  domain.RegistryStats
	Router    router.Stats
	Folders   folders.Counters
	Tokenizer string
	Warnings  []domain.Warning
}

// Stats computes the full stats report over an immutable snapshot, so it
// never blocks a concurrent writer.
func (m *Manager) Stats() *StatsReport {
	return &StatsReport{
		Registry:  m.Snapshot().Stats(),
		Router:    m.router.Stats(),
		Folders:   m.folders.Counters(),
		Tokenizer: m.tokenizer.Name(),
		Warnings:  m.LoadWarnings(),
	}
}
