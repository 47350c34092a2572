package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/escapebook/internal/ui/theme"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the puzzle template catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List puzzle templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		fmt.Printf("%-22s  %s\n", "ID", "Name")
		fmt.Println(theme.Rule(60))
		for _, t := range cat.All() {
			fmt.Printf("%-22s  %s\n", t.ID, t.Name)
		}
		fmt.Println()
		fmt.Println(theme.Hint.Render(fmt.Sprintf("%d templates", cat.Len())))
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the rules and example of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		t, err := cat.Lookup(args[0])
		if err != nil {
			return err
		}

		fmt.Println(theme.Title.Render(t.Name), theme.Label.Render("("+t.ID+")"))
		fmt.Println()
		fmt.Println(t.Rules)
		if t.Example != nil {
			data, err := json.MarshalIndent(t.Example, "", "  ")
			if err != nil {
				return fmt.Errorf("encode example: %w", err)
			}
			fmt.Println()
			fmt.Println(theme.Heading.Render("Example"))
			fmt.Println(string(data))
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}
