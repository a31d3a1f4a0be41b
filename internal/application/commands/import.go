package commands

import (
	"context"
	"fmt"

	"docindex/internal/application"
	"docindex/internal/lifecycle"
)

// ImportResult contains the outcome of an import run
type ImportResult struct {
	Report  *lifecycle.ImportReport
	Message string
}

// ImportCommand registers every unindexed document under the root
type ImportCommand struct {
	manager *lifecycle.Manager
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand(manager *lifecycle.Manager) *ImportCommand {
	return &ImportCommand{manager: manager}
}

// Validate checks if the import operation can run
func (c *ImportCommand) Validate() error {
	if c.manager == nil {
		return &application.ValidationError{
			Field:   "manager",
			Message: "lifecycle manager is required",
		}
	}
	return nil
}

// Execute runs the import command
func (c *ImportCommand) Execute(ctx context.Context) (*ImportResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	report, err := c.manager.Import(ctx)
	if err != nil {
		return &ImportResult{Report: report}, fmt.Errorf("import failed: %w", err)
	}

	return &ImportResult{
		Report: report,
		Message: fmt.Sprintf("Imported %d of %d documents (%d already registered)",
			report.Imported, report.Scanned, report.Skipped),
	}, nil
}
