package store

import (
	"context"
	"errors"
	"time"

	"vehiclerules/internal/rules"
)

// ErrRuleNotFound is returned when a rule id does not exist.
var ErrRuleNotFound = errors.New("rule not found")

// Store defines the rule catalog persistence contract. Implementations must
// be safe for concurrent use. Reads are read-after-write consistent: a
// committed rule change is visible to the next validation read.
type Store interface {
	// ListActiveRules retrieves all Active rules of the given type. This is
	// the evaluation pre-filter; validity deadlines are checked by the
	// engine, not here.
	ListActiveRules(ctx context.Context, ruleType rules.RuleType) ([]rules.Rule, error)

	// GetConditionGroups retrieves the condition groups owned by a rule.
	GetConditionGroups(ctx context.Context, ruleID string) ([]rules.ConditionGroup, error)

	// GetConditions retrieves the conditions owned by a condition group.
	GetConditions(ctx context.Context, groupID string) ([]rules.Condition, error)

	// ListRules retrieves all rules regardless of status.
	ListRules(ctx context.Context) ([]rules.Rule, error)

	// GetRule retrieves a single rule by id.
	// Returns ErrRuleNotFound if the rule does not exist.
	GetRule(ctx context.Context, id string) (*rules.Rule, error)

	// UpsertRule creates or replaces a rule together with its condition
	// groups and conditions. The nested structure is replaced wholesale so
	// readers always see a consistent snapshot of a rule.
	UpsertRule(ctx context.Context, params UpsertParams) (*rules.Rule, error)

	// DeleteRule removes a rule and, by cascading ownership, its groups and
	// their conditions. Deleting an unknown id is not an error (idempotent).
	DeleteRule(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// ConditionParams describes one condition on the write path.
type ConditionParams struct {
	Parameter string         `json:"parameter"`
	Operator  rules.Operator `json:"operator"`
	Value     string         `json:"value"`
	OrGroup   *int           `json:"orGroup,omitempty"`
}

// GroupParams describes one condition group and its conditions on the write
// path.
type GroupParams struct {
	Description string            `json:"description,omitempty"`
	Conditions  []ConditionParams `json:"conditions"`
}

// UpsertParams contains the parameters for creating or replacing a rule.
// An empty ID means create.
type UpsertParams struct {
	ID                string         `json:"id,omitempty"`
	Name              string         `json:"name"`
	RuleType          rules.RuleType `json:"ruleType"`
	Status            rules.Status   `json:"status"`
	ValidUntil        *time.Time     `json:"validUntil,omitempty"`
	Action            string         `json:"action"`
	ActionMessage     string         `json:"actionMessage"`
	CustomerType      string         `json:"customerType"`
	Country           string         `json:"country"`
	OpportunitySource string         `json:"opportunitySource"`
	Expression        *string        `json:"expression,omitempty"`
	Actor             string         `json:"actor,omitempty"` // recorded as creator/last modifier
	Groups            []GroupParams  `json:"groups,omitempty"`
}
