package commands

import (
	"context"
	"fmt"

	"docindex/internal/application"
	"docindex/internal/lifecycle"
)

// StatsResult contains the composed stats report
type StatsResult struct {
	Report  *lifecycle.StatsReport
	Message string
}

// StatsCommand aggregates registry, router, and folder counters
type StatsCommand struct {
	manager *lifecycle.Manager
}

// NewStatsCommand creates a new StatsCommand
func NewStatsCommand(manager *lifecycle.Manager) *StatsCommand {
	return &StatsCommand{manager: manager}
}

// Validate checks if the stats operation can run
func (c *StatsCommand) Validate() error {
	if c.manager == nil {
		return &application.ValidationError{
			Field:   "manager",
			Message: "lifecycle manager is required",
		}
	}
	return nil
}

// Execute runs the stats command
func (c *StatsCommand) Execute(ctx context.Context) (*StatsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	report := c.manager.Stats()
	return &StatsResult{
		Report: report,
		Message: fmt.Sprintf("%d documents, %.0f%% JSON coverage, %.1f%% token savings",
			report.Registry.DocumentCount,
			report.Registry.JSONCoverage*100,
			report.Registry.TokenSavings*100),
	}, nil
}
