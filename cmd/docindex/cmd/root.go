package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docindex/internal/adapters/claudecli"
	"docindex/internal/adapters/registryfile"
	"docindex/internal/adapters/sqlite"
	"docindex/internal/adapters/tokenizer"
	"docindex/internal/config"
	"docindex/internal/domain"
	"docindex/internal/lifecycle"
)

var (
	rootDir     string
	manager     *lifecycle.Manager
	searchIndex *sqlite.Index
)

var rootCmd = &cobra.Command{
	Use:   "docindex",
	Short: "Document registry and routing engine",
	Long: `docindex indexes every project document, routes unregistered
documents into category folders through a four-tier cascading matcher,
maintains token-optimized JSON twins, and validates document health.

The registry lives as one JSON file under the documents root; the
commands here are thin wrappers over the lifecycle engine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return initManager()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if searchIndex != nil {
			searchIndex.Close()
		}
	},
}

func initManager() error {
	store := registryfile.NewStore(config.RegistryPath(rootDir))

	searchIndex = sqlite.NewIndex()
	if err := searchIndex.Open(config.IndexPath(rootDir)); err != nil {
		// The index is a rebuildable cache; run without it.
		fmt.Fprintf(os.Stderr, "warning: search index unavailable: %v\n", err)
		searchIndex = nil
	}

	cfg := lifecycle.Config{
		Root:                rootDir,
		TwinsDir:            config.TwinsDir(rootDir),
		Store:               store,
		Locker:              registryfile.NewFileLock(store.Path()),
		Tokenizer:           tokenizer.New(config.Tokenizer()),
		Classifier:          claudecli.NewClassifier(claudecli.WithModel(config.Model())),
		RulesPath:           config.RulesPath(rootDir),
		ConfidenceThreshold: config.ConfidenceThreshold(),
		SimilarityThreshold: config.SimilarityThreshold(),
	}
	if searchIndex != nil {
		cfg.Index = searchIndex
	}

	var err error
	manager, err = lifecycle.New(cfg)
	return err
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", config.Root(), "documents root directory")
}

// GetManager returns the initialized lifecycle manager
func GetManager() *lifecycle.Manager {
	return manager
}

func printWarnings(warnings []domain.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
