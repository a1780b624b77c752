package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vehiclerules/internal/cli"
	"vehiclerules/internal/client"
	"vehiclerules/internal/engine"
	"vehiclerules/internal/rules"
)

var (
	validateRuleType string
	validateCountry  string
	validateCustomer string
	validateSource   string
	validateAttrs    []string
	validateFormat   string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a vehicle against the rule catalog",
	Long: `Submit a validation query and print the verdict.

Vehicle attributes are passed as repeated --attr key=value flags; values are
sent as strings, which matches how rule values are authored.

Examples:
  rulectl validate --rule-type Global --country CZ --customer Retail --source Web \
      --attr make=10 --attr makeYear=2021 --attr price=250000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		attributes := make(map[string]any, len(validateAttrs))
		for _, attr := range validateAttrs {
			key, value, found := strings.Cut(attr, "=")
			if !found || strings.TrimSpace(key) == "" {
				return fmt.Errorf("invalid --attr %q (expected key=value)", attr)
			}
			attributes[strings.TrimSpace(key)] = value
		}

		query := engine.Query{
			RuleType:          rules.RuleType(validateRuleType),
			Country:           validateCountry,
			CustomerType:      validateCustomer,
			OpportunitySource: validateSource,
			Attributes:        attributes,
		}

		c := client.NewClient(baseURL, apiKey)
		verdict, err := c.Validate(context.Background(), query)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		return cli.PrintVerdict(verdict, cli.OutputFormat(validateFormat))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateRuleType, "rule-type", "Global", "Rule type (Global or Local)")
	validateCmd.Flags().StringVar(&validateCountry, "country", "", "Country of the request context")
	validateCmd.Flags().StringVar(&validateCustomer, "customer", "", "Customer type")
	validateCmd.Flags().StringVar(&validateSource, "source", "", "Opportunity source")
	validateCmd.Flags().StringArrayVar(&validateAttrs, "attr", nil, "Vehicle attribute key=value (repeatable)")
	validateCmd.Flags().StringVar(&validateFormat, "format", "table", "Output format (table, json, yaml)")

	_ = validateCmd.MarkFlagRequired("country")
	_ = validateCmd.MarkFlagRequired("customer")
	_ = validateCmd.MarkFlagRequired("source")
}
