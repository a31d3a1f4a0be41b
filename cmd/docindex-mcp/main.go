package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"docindex/internal/adapters/claudecli"
	mcpadapter "docindex/internal/adapters/mcp"
	"docindex/internal/adapters/registryfile"
	"docindex/internal/adapters/sqlite"
	"docindex/internal/adapters/tokenizer"
	"docindex/internal/config"
	"docindex/internal/lifecycle"
)

func main() {
	rootFlag := flag.String("root", config.Root(), "documents root directory")
	flag.Parse()
	root := *rootFlag

	store := registryfile.NewStore(config.RegistryPath(root))

	index := sqlite.NewIndex()
	if err := index.Open(config.IndexPath(root)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: search index unavailable: %v\n", err)
		index = nil
	} else {
		defer index.Close()
	}

	cfg := lifecycle.Config{
		Root:                root,
		TwinsDir:            config.TwinsDir(root),
		Store:               store,
		Locker:              registryfile.NewFileLock(store.Path()),
		Tokenizer:           tokenizer.New(config.Tokenizer()),
		Classifier:          claudecli.NewClassifier(claudecli.WithModel(config.Model())),
		RulesPath:           config.RulesPath(root),
		ConfidenceThreshold: config.ConfidenceThreshold(),
		SimilarityThreshold: config.SimilarityThreshold(),
	}
	if index != nil {
		cfg.Index = index
	}

	manager, err := lifecycle.New(cfg)
	if err != nil {
		log.Fatalf("docindex-mcp: %v", err)
	}

	mcpServer := server.NewMCPServer(
		"docindex-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	if index != nil {
		mcpadapter.RegisterTools(mcpServer, manager, index)
	} else {
		mcpadapter.RegisterTools(mcpServer, manager, nil)
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("docindex-mcp: %v", err)
	}
}
