package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docindex/internal/adapters/tui"
	"docindex/internal/adapters/tui/styles"
	"docindex/internal/application/commands"
	"docindex/internal/domain"
)

var mapInteractive bool

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the category/document tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewMapCommand(GetManager()).Execute(context.Background())
		if err != nil {
			return err
		}

		if mapInteractive {
			browser := tui.NewBrowser(rootDir, result.Root)
			p := tea.NewProgram(browser, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("browser failed: %w", err)
			}
			return nil
		}

		printMapTree(result.Root)
		return nil
	},
}

func printMapTree(root *domain.MapNode) {
	if len(root.Children) == 0 {
		fmt.Println("registry is empty, run `docindex import` first")
		return
	}
	for _, category := range root.Children {
		fmt.Printf("%s %s\n",
			styles.NodeCategory.Render(category.Name),
			styles.TokenBadge.Render(fmt.Sprintf("(%d docs, %d md tokens)",
				len(category.Children), category.Tokens.MD)))
		for _, doc := range category.Children {
			twin := ""
			if !doc.HasJSON {
				twin = " " + styles.NoTwinBadge.Render("(no twin)")
			}
			fmt.Printf("  %s %s%s\n", doc.Name,
				styles.TokenBadge.Render(fmt.Sprintf("[%d md / %d json]",
					doc.Tokens.MD, doc.Tokens.JSON)),
				twin)
		}
	}
}

func init() {
	mapCmd.Flags().BoolVarP(&mapInteractive, "interactive", "i", false, "browse the map in a TUI")
	rootCmd.AddCommand(mapCmd)
}
