// Package rules defines the rule catalog domain model and write-side
// validation for rule payloads.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"vehiclerules/internal/expr"
)

const (
	// MaxNameLength is the maximum length for rule names.
	MaxNameLength = 128
	// MaxMessageLength is the maximum length for action messages.
	MaxMessageLength = 500
	// MaxValueLength is the maximum length for a condition value.
	MaxValueLength = 1024
)

// ValidationResult holds field-level validation errors for a rule payload.
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// NewValidationResult creates a passing result with no errors.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}
}

// AddError adds a field error and marks the result as invalid.
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors[field] = message
}

// knownOperators is the closed operator family accepted on write. The
// evaluator fails closed on anything else, so rejecting unknown operators
// here keeps authored rules evaluable.
var knownOperators = map[Operator]bool{
	OpEq: true, OpNeq: true, OpIn: true, OpNotIn: true,
	OpGt: true, OpLt: true, OpGte: true, OpLte: true, OpBetween: true,
}

// ValidateRule validates a rule and its nested conditions, one slice per
// condition group in payload order.
func ValidateRule(rule Rule, groupConditions [][]Condition) *ValidationResult {
	result := NewValidationResult()

	if strings.TrimSpace(rule.Name) == "" {
		result.AddError("name", "name is required")
	} else if len(rule.Name) > MaxNameLength {
		result.AddError("name", fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}

	if rule.RuleType != RuleTypeGlobal && rule.RuleType != RuleTypeLocal {
		result.AddError("ruleType", fmt.Sprintf("ruleType must be %q or %q", RuleTypeGlobal, RuleTypeLocal))
	}

	switch rule.Status {
	case StatusActive, StatusInactive, StatusDraft:
	default:
		result.AddError("status", "status must be Active, Inactive or Draft")
	}

	if strings.TrimSpace(rule.Action) == "" {
		result.AddError("action", "action is required")
	}
	if len(rule.ActionMessage) > MaxMessageLength {
		result.AddError("actionMessage", fmt.Sprintf("actionMessage must be at most %d characters", MaxMessageLength))
	}

	for _, field := range []struct{ name, value string }{
		{"customerType", rule.CustomerType},
		{"country", rule.Country},
		{"opportunitySource", rule.OpportunitySource},
	} {
		if strings.TrimSpace(field.value) == "" {
			result.AddError(field.name, field.name+" is required (use \"Any\" for no filter)")
		}
	}

	if rule.Expression != nil {
		if err := expr.Validate(*rule.Expression); err != nil {
			result.AddError("expression", err.Error())
		}
	}

	for i, conditions := range groupConditions {
		for j, condition := range conditions {
			validateCondition(result, fmt.Sprintf("groups[%d].conditions[%d]", i, j), condition)
		}
	}

	return result
}

func validateCondition(result *ValidationResult, prefix string, c Condition) {
	if strings.TrimSpace(c.Parameter) == "" {
		result.AddError(prefix+".parameter", "parameter is required")
	}
	if !knownOperators[c.Operator] {
		result.AddError(prefix+".operator", fmt.Sprintf("unknown operator %q", c.Operator))
		return
	}
	if len(c.Value) > MaxValueLength {
		result.AddError(prefix+".value", fmt.Sprintf("value must be at most %d characters", MaxValueLength))
		return
	}
	if c.OrGroup != nil && *c.OrGroup < 0 {
		result.AddError(prefix+".orGroup", "orGroup must be a non-negative integer")
	}

	switch c.Operator {
	case OpGt, OpLt, OpGte, OpLte:
		if _, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64); err != nil {
			result.AddError(prefix+".value", "numeric operator requires a numeric value")
		}
	case OpBetween:
		bounds := strings.Split(c.Value, ",")
		if len(bounds) != 2 {
			result.AddError(prefix+".value", "BETWEEN requires exactly two comma-separated bounds")
			return
		}
		for _, bound := range bounds {
			if _, err := strconv.ParseFloat(strings.TrimSpace(bound), 64); err != nil {
				result.AddError(prefix+".value", "BETWEEN bounds must be numeric")
				return
			}
		}
	case OpIn, OpNotIn:
		if strings.TrimSpace(c.Value) == "" {
			result.AddError(prefix+".value", "membership operator requires a non-empty list")
		}
	default:
		if strings.TrimSpace(c.Value) == "" {
			result.AddError(prefix+".value", "value is required")
		}
	}
}
