package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURL string
	apiKey  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rulectl",
	Short: "CLI tool for the vehicle rule validation service",
	Long: `Rulectl talks to a running vehiclerules service.

It can submit validation queries and inspect the rule catalog.

Examples:
  rulectl validate --rule-type Global --country CZ --customer Retail --source Web --attr make=10 --attr price=250000
  rulectl rules --api-key <admin-key>`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Base URL of the vehiclerules API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key (rule catalog commands)")
}
