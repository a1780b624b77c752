package rules

import "time"

// Operator represents a comparison operator used in rule conditions.
type Operator string

// Supported condition operators. The symbolic spellings are the canonical
// stored form; the engine also accepts word aliases (eq, in, between, ...).
const (
	OpEq      Operator = "="
	OpNeq     Operator = "!="
	OpIn      Operator = "IN"
	OpNotIn   Operator = "NOT IN"
	OpGt      Operator = ">"
	OpLt      Operator = "<"
	OpGte     Operator = ">="
	OpLte     Operator = "<="
	OpBetween Operator = "BETWEEN"
)

// RuleType scopes a rule to a validation context.
type RuleType string

const (
	RuleTypeGlobal RuleType = "Global"
	RuleTypeLocal  RuleType = "Local"
)

// Status is the rule lifecycle state. Only Active rules participate in
// evaluation.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusDraft    Status = "Draft"
)

// Wildcard matches any query value when used in a rule's scalar filters
// (customer type, country, opportunity source).
const Wildcard = "Any"

// Rule is a named validation policy. A rule matches a query when its scalar
// filters match, it has not expired, every one of its condition groups is
// satisfied, and its optional expression (if any) evaluates to true.
type Rule struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	RuleType          RuleType   `json:"ruleType"`
	Status            Status     `json:"status"`
	ValidUntil        *time.Time `json:"validUntil,omitempty"` // nil = never expires
	Action            string     `json:"action"`
	ActionMessage     string     `json:"actionMessage"`
	CustomerType      string     `json:"customerType"`
	Country           string     `json:"country"`
	OpportunitySource string     `json:"opportunitySource"`
	Expression        *string    `json:"expression,omitempty"` // optional JSON Logic predicate
	CreatedBy         string     `json:"createdBy,omitempty"`
	UpdatedBy         string     `json:"updatedBy,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ConditionGroup is an AND-unit of conditions belonging to exactly one rule.
// A rule matches only if every one of its groups matches; a rule with no
// groups matches trivially once the scalar filters pass.
type ConditionGroup struct {
	ID          string `json:"id"`
	RuleID      string `json:"ruleId"`
	Description string `json:"description,omitempty"`
}

// Condition is a single parameter/operator/value comparison inside one group.
// Conditions sharing the same non-nil OrGroup tag form one OR-unit: the unit
// is satisfied if any member matches. A condition without a tag is its own
// singleton unit. The group is satisfied when every unit is satisfied.
type Condition struct {
	ID        string   `json:"id"`
	GroupID   string   `json:"groupId"`
	Parameter string   `json:"parameter"`
	Operator  Operator `json:"operator"`
	Value     string   `json:"value"` // comma-separated list for IN / NOT IN / BETWEEN
	OrGroup   *int     `json:"orGroup,omitempty"`
}

// Expired reports whether the rule's validity deadline has passed at now.
// A rule without a deadline never expires.
func (r *Rule) Expired(now time.Time) bool {
	return r.ValidUntil != nil && !r.ValidUntil.After(now)
}

// Known vehicle parameters referenced by conditions. The attribute map on a
// query is open; these are the names the rule editor offers.
const (
	ParamMake       = "make"
	ParamModel      = "model"
	ParamMakeYear   = "makeYear"
	ParamTachometer = "tachometer"
	ParamFuelType   = "fuelType"
	ParamEngineType = "engineType"
	ParamPrice      = "price"
)
