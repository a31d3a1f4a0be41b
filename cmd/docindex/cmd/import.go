package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"docindex/internal/application/commands"
	"docindex/internal/domain"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Register every unindexed document under the root",
	Long: `Walk the documents root and register every markdown file not already
present in the registry: token counts are computed, a JSON twin is
written, and a category is inferred (the containing folder first, then
the tiered router). Re-running import on an unchanged tree writes
nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := commands.NewImportCommand(GetManager()).Execute(ctx)
		if result != nil && result.Report != nil {
			printImportReport(result)
		}
		if err != nil {
			return err
		}
		return nil
	},
}

func printImportReport(result *commands.ImportResult) {
	report := result.Report
	printWarnings(report.Warnings)
	printWarnings(report.Conflicts)
	for _, fileErr := range report.Errors {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", fileErr)
	}

	if result.Message != "" {
		fmt.Println(result.Message)
	}
	for tier := domain.TierExact; tier <= domain.TierDerive; tier++ {
		if count := report.Routed[tier]; count > 0 {
			fmt.Printf("  tier %d (%s): %d\n", tier, tier, count)
		}
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
}
