package engine

import "vehiclerules/internal/rules"

// Query is the per-request validation input. The scalar context fields are
// always concrete values; wildcards exist only on the rule side. Attributes
// is an open map of vehicle fields (make, model, makeYear, tachometer, ...);
// keys no condition references are ignored.
type Query struct {
	RuleType          rules.RuleType `json:"ruleType"`
	Country           string         `json:"country"`
	CustomerType      string         `json:"customerType"`
	OpportunitySource string         `json:"opportunitySource"`
	Attributes        map[string]any `json:"attributes,omitempty"`
}
