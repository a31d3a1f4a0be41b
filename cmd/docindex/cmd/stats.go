package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"docindex/internal/application/commands"
	"docindex/internal/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry, router, and folder manager statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewStatsCommand(GetManager()).Execute(context.Background())
		if err != nil {
			return err
		}
		printStatsReport(result)
		return nil
	},
}

func printStatsReport(result *commands.StatsResult) {
	report := result.Report
	printWarnings(report.Warnings)

	fmt.Println(result.Message)
	fmt.Printf("tokenizer: %s\n\n", report.Tokenizer)

	categories := make([]string, 0, len(report.Registry.Categories))
	for category := range report.Registry.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		cs := report.Registry.Categories[category]
		fmt.Printf("%-24s %3d docs  %8d md tokens  %7d json tokens\n",
			category, cs.Documents, cs.MDTokens, cs.JSONTokens)
	}

	if len(report.Router.TierUses) > 0 {
		fmt.Println("\nrouter tiers:")
		for tier := domain.TierExact; tier <= domain.TierDerive; tier++ {
			uses := report.Router.TierUses[tier]
			slow := report.Router.SlowTiers[tier]
			if uses == 0 && slow == 0 {
				continue
			}
			fmt.Printf("  tier %d (%s): %d uses, %d over budget\n", tier, tier, uses, slow)
		}
		if report.Router.ClassifierErrors > 0 {
			fmt.Printf("  classifier errors: %d\n", report.Router.ClassifierErrors)
		}
	}

	folders := report.Folders
	if folders.Created > 0 || folders.Reused > 0 {
		fmt.Printf("\nfolders: %d created, %d reused\n", folders.Created, folders.Reused)
		for _, c := range folders.Consolidations {
			fmt.Printf("  consolidation candidate: %s -> %s (%.2f)\n",
				c.Candidate, c.Existing, c.Similarity)
		}
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
