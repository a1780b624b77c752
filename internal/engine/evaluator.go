// Package engine implements the rule evaluation core: typed condition
// operators, OR-unit grouping, per-rule matching and first-match-wins
// candidate selection. Evaluation is pure over loaded data; the only I/O is
// the group/condition loads delegated to the Loader.
package engine

import (
	"context"
	"log"
	"sort"
	"time"

	"vehiclerules/internal/expr"
	"vehiclerules/internal/rules"
)

// Loader fetches a rule's condition groups and their conditions. Implemented
// by the rule store.
type Loader interface {
	GetConditionGroups(ctx context.Context, ruleID string) ([]rules.ConditionGroup, error)
	GetConditions(ctx context.Context, groupID string) ([]rules.Condition, error)
}

// MatchesFilters checks the rule's scalar filters, lifecycle and validity
// against the query, short-circuiting on the first failure. This is the cheap
// pre-check before any condition data is loaded.
func MatchesFilters(rule *rules.Rule, q Query, now time.Time) bool {
	if rule.Status != rules.StatusActive || rule.RuleType != q.RuleType {
		return false
	}
	if rule.Expired(now) {
		return false
	}
	if rule.Country != rules.Wildcard && rule.Country != q.Country {
		return false
	}
	if rule.CustomerType != rules.Wildcard && rule.CustomerType != q.CustomerType {
		return false
	}
	if rule.OpportunitySource != rules.Wildcard && rule.OpportunitySource != q.OpportunitySource {
		return false
	}
	return true
}

// RuleMatches decides whether one rule as a whole matches the query. The
// rule's condition groups are loaded via the Loader; every group must be
// satisfied. An optional rule expression is AND-ed on top and fails closed
// when invalid.
func RuleMatches(ctx context.Context, loader Loader, rule *rules.Rule, q Query, now time.Time) (bool, error) {
	if !MatchesFilters(rule, q, now) {
		return false, nil
	}

	groups, err := loader.GetConditionGroups(ctx, rule.ID)
	if err != nil {
		return false, err
	}
	for _, group := range groups {
		conditions, err := loader.GetConditions(ctx, group.ID)
		if err != nil {
			return false, err
		}
		if !GroupSatisfied(conditions, q.Attributes) {
			return false, nil
		}
	}

	if rule.Expression != nil {
		match, err := expr.Evaluate(*rule.Expression, q.Attributes)
		if err != nil || !match {
			return false, nil
		}
	}
	return true, nil
}

// Select runs the rule matcher over the candidates in ascending id order and
// returns the first match, or nil when nothing matches. Scan order is fixed
// here rather than trusted from the store, so repeated calls resolve ties
// identically. A rule whose condition data cannot be loaded is skipped, not
// fatal.
func Select(ctx context.Context, loader Loader, candidates []rules.Rule, q Query, now time.Time) (*rules.Rule, error) {
	ordered := make([]rules.Rule, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for i := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rule := &ordered[i]
		match, err := RuleMatches(ctx, loader, rule, q, now)
		if err != nil {
			log.Printf("engine: skipping rule %s (%s): %v", rule.ID, rule.Name, err)
			continue
		}
		if match {
			return rule, nil
		}
	}
	return nil, nil
}
