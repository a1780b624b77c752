package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"vehiclerules/internal/rules"
	"vehiclerules/internal/validation"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintRules outputs the rule catalog in the specified format
func PrintRules(list []rules.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]rules.Rule{"rules": list})
	case FormatYAML:
		return printYAML(list)
	case FormatTable:
		return printRuleTable(list)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintVerdict outputs a validation verdict in the specified format
func PrintVerdict(verdict *validation.Verdict, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(verdict)
	case FormatYAML:
		return printYAML(verdict)
	case FormatTable:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Match", "Action", "Message")
		action := ""
		if verdict.Action != nil {
			action = *verdict.Action
		}
		table.Append(fmt.Sprintf("%t", verdict.IsMatch), action, verdict.ActionMessage)
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printRuleTable(list []rules.Rule) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Type", "Status", "Action", "Country", "Customer", "Valid Until", "Updated At")

	for _, rule := range list {
		validUntil := "-"
		if rule.ValidUntil != nil {
			validUntil = rule.ValidUntil.Format("2006-01-02")
		}

		name := rule.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}

		table.Append(
			rule.ID,
			name,
			string(rule.RuleType),
			string(rule.Status),
			rule.Action,
			rule.Country,
			rule.CustomerType,
			validUntil,
			rule.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}

	return table.Render()
}
