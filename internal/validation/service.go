// Package validation is the entry point of the rule evaluation core: it
// loads applicable rules, resolves the winning rule and produces the verdict,
// recording every attempt in the audit log.
package validation

import (
	"context"
	"fmt"
	"log"
	"time"

	"vehiclerules/internal/audit"
	"vehiclerules/internal/engine"
	"vehiclerules/internal/rules"
	"vehiclerules/internal/telemetry"
)

// NoMatchMessage is the action message returned when no rule matches. The
// exact string is part of the observable contract; existing callers depend
// on it.
const NoMatchMessage = "No matching rules found"

// Verdict is the validation outcome returned to the caller. Action is nil on
// no-match.
type Verdict struct {
	IsMatch       bool    `json:"isMatch"`
	Action        *string `json:"action"`
	ActionMessage string  `json:"actionMessage"`
}

// RuleSource is the slice of the rule store the orchestrator needs: the
// Active-rule pre-filter plus the engine's group/condition loads.
type RuleSource interface {
	ListActiveRules(ctx context.Context, ruleType rules.RuleType) ([]rules.Rule, error)
	engine.Loader
}

// Service orchestrates one validation: load -> select -> verdict -> audit.
// Each call is a stateless computation over a fresh read of the rule data.
type Service struct {
	source   RuleSource
	recorder *audit.Recorder
	now      func() time.Time
}

// NewService creates a validation service.
func NewService(source RuleSource, recorder *audit.Recorder) *Service {
	return &Service{source: source, recorder: recorder, now: time.Now}
}

// Validate evaluates the query against the rule catalog and returns the
// verdict. A match or no-match outcome is always audited; only total store
// failure (no rules readable at all) propagates as an error.
func (s *Service) Validate(ctx context.Context, query engine.Query) (Verdict, error) {
	start := time.Now()

	candidates, err := s.source.ListActiveRules(ctx, query.RuleType)
	if err != nil {
		telemetry.Validations.WithLabelValues("error").Inc()
		return Verdict{}, fmt.Errorf("load rules: %w", err)
	}

	winner, err := engine.Select(ctx, s.source, candidates, query, s.now())
	if err != nil {
		telemetry.Validations.WithLabelValues("error").Inc()
		return Verdict{}, err
	}

	verdict := Verdict{IsMatch: false, ActionMessage: NoMatchMessage}
	var matchedRuleID *string
	if winner != nil {
		action := winner.Action
		verdict = Verdict{IsMatch: true, Action: &action, ActionMessage: winner.ActionMessage}
		matchedRuleID = &winner.ID
	}

	s.record(query, verdict, matchedRuleID)

	if verdict.IsMatch {
		telemetry.Validations.WithLabelValues("match").Inc()
	} else {
		telemetry.Validations.WithLabelValues("no_match").Inc()
	}
	telemetry.ValidationDuration.Observe(time.Since(start).Seconds())

	return verdict, nil
}

// record hands the outcome to the audit recorder. A serialization failure is
// logged, never propagated: audit must not turn a computed verdict into a
// caller-visible error.
func (s *Service) record(query engine.Query, verdict Verdict, matchedRuleID *string) {
	entry, err := audit.NewEntry(query, verdict, matchedRuleID, verdict.IsMatch)
	if err != nil {
		log.Printf("validation: failed to build audit entry: %v", err)
		return
	}
	s.recorder.Record(entry)
}
