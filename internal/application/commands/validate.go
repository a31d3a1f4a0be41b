package commands

import (
	"context"
	"fmt"

	"docindex/internal/application"
	"docindex/internal/lifecycle"
)

// ValidateResult contains the outcome of a validation run
type ValidateResult struct {
	Report  *lifecycle.ValidationReport
	Message string
}

// ValidateCommand checks the health of every registry entry
type ValidateCommand struct {
	manager *lifecycle.Manager
	Prune   bool
}

// NewValidateCommand creates a new ValidateCommand
func NewValidateCommand(manager *lifecycle.Manager, prune bool) *ValidateCommand {
	return &ValidateCommand{manager: manager, Prune: prune}
}

// Validate checks if the validation run can start
func (c *ValidateCommand) Validate() error {
	if c.manager == nil {
		return &application.ValidationError{
			Field:   "manager",
			Message: "lifecycle manager is required",
		}
	}
	return nil
}

// Execute runs the validate command
func (c *ValidateCommand) Execute(ctx context.Context) (*ValidateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	report, err := c.manager.Validate(ctx, lifecycle.ValidateOptions{Prune: c.Prune})
	if err != nil {
		return &ValidateResult{Report: report}, fmt.Errorf("validation failed: %w", err)
	}

	return &ValidateResult{
		Report: report,
		Message: fmt.Sprintf("%d/%d healthy (%.0f%%)",
			report.Healthy, report.Total, report.Score()*100),
	}, nil
}
