// Package mcp exposes the registry engine as MCP tools for the agent
// command templates (document-map, import-documents, validate-documents,
// registry-stats) that call into this engine.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"docindex/internal/application/commands"
	"docindex/internal/domain"
	"docindex/internal/lifecycle"
	"docindex/internal/ports"
	"docindex/internal/router"
)

// RegisterTools adds all registry tools to the MCP server. index may be
// nil, in which case the search tool reports unavailability.
func RegisterTools(s *server.MCPServer, manager *lifecycle.Manager, index ports.SearchIndex) {
	s.AddTool(importTool(), importHandler(manager))
	s.AddTool(validateTool(), validateHandler(manager))
	s.AddTool(statsTool(), statsHandler(manager))
	s.AddTool(mapTool(), mapHandler(manager))
	s.AddTool(searchTool(), searchHandler(index))
	s.AddTool(classifyTool(), classifyHandler(manager))
}

// --- import_documents ---

func importTool() mcp.Tool {
	return mcp.NewTool("import_documents",
		mcp.WithDescription("Walk the documents root and register every markdown file not already in the registry. Idempotent on an unchanged tree."),
	)
}

func importHandler(manager *lifecycle.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewImportCommand(manager).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		writeWarnings(&sb, result.Report.Warnings)
		writeWarnings(&sb, result.Report.Conflicts)
		for _, fileErr := range result.Report.Errors {
			fmt.Fprintf(&sb, "\nskipped: %v", fileErr)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- validate_documents ---

func validateTool() mcp.Tool {
	return mcp.NewTool("validate_documents",
		mcp.WithDescription("Check every registry entry for freshness, completeness, placement, and dependency resolution."),
		mcp.WithBoolean("prune",
			mcp.Description("Remove entries whose underlying file no longer exists."),
		),
	)
}

func validateHandler(manager *lifecycle.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prune := req.GetBool("prune", false)

		result, err := commands.NewValidateCommand(manager, prune).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		for _, health := range result.Report.Reports {
			if health.Status == domain.StatusHealthy {
				continue
			}
			fmt.Fprintf(&sb, "\n%s %s/%s", health.Status, health.Category, health.ID)
			if health.Detail != "" {
				fmt.Fprintf(&sb, " (%s)", health.Detail)
			}
		}
		for _, entry := range result.Report.Pruned {
			fmt.Fprintf(&sb, "\npruned: %s/%s", entry.Category, entry.ID)
		}
		if result.Report.HasErrors() {
			fmt.Fprintf(&sb, "\nERROR: entries with missing dependencies present")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- registry_stats ---

func statsTool() mcp.Tool {
	return mcp.NewTool("registry_stats",
		mcp.WithDescription("Report per-category document counts, token sums, JSON coverage, token savings, and router tier usage."),
	)
}

func statsHandler(manager *lifecycle.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewStatsCommand(manager).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		report := result.Report

		var sb strings.Builder
		sb.WriteString(result.Message)
		fmt.Fprintf(&sb, "\ntokenizer: %s", report.Tokenizer)
		categories := make([]string, 0, len(report.Registry.Categories))
		for category := range report.Registry.Categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			cs := report.Registry.Categories[category]
			fmt.Fprintf(&sb, "\n%s: %d docs, %d md tokens, %d json tokens",
				category, cs.Documents, cs.MDTokens, cs.JSONTokens)
		}
		for tier := domain.TierExact; tier <= domain.TierDerive; tier++ {
			if uses := report.Router.TierUses[tier]; uses > 0 {
				fmt.Fprintf(&sb, "\ntier %d (%s): %d uses, %d over budget",
					tier, tier, uses, report.Router.SlowTiers[tier])
			}
		}
		fmt.Fprintf(&sb, "\nfolders: %d created, %d reused",
			report.Folders.Created, report.Folders.Reused)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- document_map ---

func mapTool() mcp.Tool {
	return mcp.NewTool("document_map",
		mcp.WithDescription("Return the category/document tree with token counts."),
	)
}

func mapHandler(manager *lifecycle.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewMapCommand(manager).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, category := range result.Root.Children {
			fmt.Fprintf(&sb, "%s (%d docs)\n", category.Name, len(category.Children))
			for _, doc := range category.Children {
				fmt.Fprintf(&sb, "  %s [%d md / %d json] %s\n",
					doc.Name, doc.Tokens.MD, doc.Tokens.JSON, doc.Path)
			}
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("registry is empty"), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search registry entries by id, category, or path fragment."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
	)
}

func searchHandler(index ports.SearchIndex) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		if index == nil {
			return toolError(fmt.Errorf("search index unavailable"))
		}

		hits, err := index.Search(query)
		if err != nil {
			return toolError(err)
		}
		if len(hits) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, hit := range hits {
			fmt.Fprintf(&sb, "%s/%s  %s (matched %s)\n", hit.Category, hit.ID, hit.Path, hit.Matched)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- classify ---

func classifyTool() mcp.Tool {
	return mcp.NewTool("classify",
		mcp.WithDescription("Route document content through the four-tier classifier without registering it."),
		mcp.WithString("content",
			mcp.Description("Document content"),
			mcp.Required(),
		),
		mcp.WithString("filename",
			mcp.Description("Optional filename hint (e.g. prd.md)"),
		),
	)
}

func classifyHandler(manager *lifecycle.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content := req.GetString("content", "")
		if content == "" {
			return toolError(fmt.Errorf("content is required"))
		}
		filename := req.GetString("filename", "")

		classification := manager.Router().Route(ctx, router.Input{
			Filename: filename,
			Content:  content,
		})
		return mcp.NewToolResultText(fmt.Sprintf(
			"category: %s\ntier: %d (%s)\nconfidence: %.2f\nlatency_ms: %.2f",
			classification.Category, classification.Tier, classification.Tier,
			classification.Confidence, classification.LatencyMs())), nil
	}
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func writeWarnings(sb *strings.Builder, warnings []domain.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(sb, "\nwarning: %s", w)
	}
}
