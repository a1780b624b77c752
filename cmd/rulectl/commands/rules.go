package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vehiclerules/internal/cli"
	"vehiclerules/internal/client"
	"vehiclerules/internal/rules"
)

var (
	rulesActiveOnly bool
	rulesFormat     string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List rules in the catalog",
	Long: `List all rules. Requires the admin API key.

Examples:
  rulectl rules --api-key <admin-key>
  rulectl rules --api-key <admin-key> --active-only --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewClient(baseURL, apiKey)

		list, err := c.ListRules(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}

		if rulesActiveOnly {
			var active []rules.Rule
			for _, rule := range list {
				if rule.Status == rules.StatusActive {
					active = append(active, rule)
				}
			}
			list = active
		}

		if len(list) == 0 {
			fmt.Println("No rules found")
			return nil
		}
		return cli.PrintRules(list, cli.OutputFormat(rulesFormat))
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().BoolVar(&rulesActiveOnly, "active-only", false, "Show only Active rules")
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "table", "Output format (table, json, yaml)")
}
