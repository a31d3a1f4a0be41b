package commands

import (
	"context"

	"docindex/internal/application"
	"docindex/internal/domain"
	"docindex/internal/lifecycle"
)

// MapResult contains the document map tree
type MapResult struct {
	Root *domain.MapNode
}

// MapCommand builds the category/document tree for rendering
type MapCommand struct {
	manager *lifecycle.Manager
}

// NewMapCommand creates a new MapCommand
func NewMapCommand(manager *lifecycle.Manager) *MapCommand {
	return &MapCommand{manager: manager}
}

// Validate checks if the map operation can run
func (c *MapCommand) Validate() error {
	if c.manager == nil {
		return &application.ValidationError{
			Field:   "manager",
			Message: "lifecycle manager is required",
		}
	}
	return nil
}

// Execute runs the map command
func (c *MapCommand) Execute(ctx context.Context) (*MapResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &MapResult{Root: c.manager.Map()}, nil
}
