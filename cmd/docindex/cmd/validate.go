package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"docindex/internal/application"
	"docindex/internal/application/commands"
	"docindex/internal/domain"
)

var validatePrune bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the health of every registry entry",
	Long: `Validate every entry for freshness, completeness, placement, and
dependency resolution. Misplacement is a suggestion only; missing
dependencies are error severity and make the command exit nonzero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := commands.NewValidateCommand(GetManager(), validatePrune).Execute(ctx)
		if result != nil && result.Report != nil {
			printValidationReport(result)
		}
		if err != nil {
			return err
		}
		if result.Report.HasErrors() {
			return fmt.Errorf("validation reported entries with %w", application.ErrMissingDependency)
		}
		return nil
	},
}

func printValidationReport(result *commands.ValidateResult) {
	report := result.Report
	printWarnings(report.Warnings)
	for _, fileErr := range report.Errors {
		fmt.Fprintf(os.Stderr, "unreadable: %v\n", fileErr)
	}

	for _, health := range report.Reports {
		if health.Status == domain.StatusHealthy {
			continue
		}
		fmt.Printf("%-20s %s/%s", health.Status, health.Category, health.ID)
		if health.Detail != "" {
			fmt.Printf("  (%s)", health.Detail)
		}
		fmt.Println()
	}
	for _, entry := range report.Pruned {
		fmt.Printf("pruned: %s/%s (%s)\n", entry.Category, entry.ID, entry.Path)
	}
	fmt.Println(result.Message)
}

func init() {
	validateCmd.Flags().BoolVar(&validatePrune, "prune", false, "remove entries whose file no longer exists")
	rootCmd.AddCommand(validateCmd)
}
