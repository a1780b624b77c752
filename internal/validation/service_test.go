package validation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vehiclerules/internal/audit"
	"vehiclerules/internal/engine"
	"vehiclerules/internal/rules"
	"vehiclerules/internal/store"
)

func seedRule(t *testing.T, s *store.MemoryStore, params store.UpsertParams) *rules.Rule {
	t.Helper()
	rule, err := s.UpsertRule(context.Background(), params)
	if err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	return rule
}

func blockRuleParams(name string) store.UpsertParams {
	return store.UpsertParams{
		Name:              name,
		RuleType:          rules.RuleTypeGlobal,
		Status:            rules.StatusActive,
		Action:            "Block",
		ActionMessage:     "vehicle blocked",
		Country:           rules.Wildcard,
		CustomerType:      rules.Wildcard,
		OpportunitySource: rules.Wildcard,
		Actor:             "tester",
		Groups: []store.GroupParams{
			{Conditions: []store.ConditionParams{
				{Parameter: "make", Operator: rules.OpEq, Value: "10"},
			}},
		},
	}
}

func testQuery(attributes map[string]any) engine.Query {
	return engine.Query{
		RuleType:          rules.RuleTypeGlobal,
		Country:           "CZ",
		CustomerType:      "Retail",
		OpportunitySource: "Web",
		Attributes:        attributes,
	}
}

// newTestService wires a service onto a memory store and sink; the returned
// drain closes the recorder so queued audit entries become visible.
func newTestService(s *store.MemoryStore) (*Service, *audit.MemorySink, func()) {
	sink := audit.NewMemorySink()
	recorder := audit.NewRecorder(sink, 16)
	return NewService(s, recorder), sink, func() { _ = recorder.Close() }
}

func TestValidate_MatchVerdict(t *testing.T) {
	memStore := store.NewMemoryStore()
	rule := seedRule(t, memStore, blockRuleParams("block make 10"))
	service, sink, drain := newTestService(memStore)

	verdict, err := service.Validate(context.Background(), testQuery(map[string]any{"make": "10"}))
	if err != nil {
		t.Fatal(err)
	}
	if !verdict.IsMatch {
		t.Fatal("expected a match")
	}
	if verdict.Action == nil || *verdict.Action != "Block" {
		t.Fatalf("want action Block, got %v", verdict.Action)
	}
	if verdict.ActionMessage != "vehicle blocked" {
		t.Fatalf("want rule's action message, got %q", verdict.ActionMessage)
	}

	drain()
	entries := sink.Entries()
	if len(entries) != 1 {
		t.Fatalf("want exactly one audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if !entry.Success {
		t.Fatal("audit success must mirror the match outcome")
	}
	if entry.MatchedRuleID == nil || *entry.MatchedRuleID != rule.ID {
		t.Fatalf("want matched rule id %s, got %v", rule.ID, entry.MatchedRuleID)
	}

	var recorded Verdict
	if err := json.Unmarshal(entry.Response, &recorded); err != nil {
		t.Fatal(err)
	}
	if recorded.IsMatch != verdict.IsMatch || recorded.ActionMessage != verdict.ActionMessage {
		t.Fatalf("audited response %+v differs from returned verdict %+v", recorded, verdict)
	}
	if recorded.Action == nil || *recorded.Action != *verdict.Action {
		t.Fatalf("audited action differs: %v vs %v", recorded.Action, verdict.Action)
	}
}

func TestValidate_NoMatchVerdict(t *testing.T) {
	memStore := store.NewMemoryStore()
	seedRule(t, memStore, blockRuleParams("block make 10"))
	service, sink, drain := newTestService(memStore)

	verdict, err := service.Validate(context.Background(), testQuery(map[string]any{"make": "3"}))
	if err != nil {
		t.Fatal(err)
	}
	if verdict.IsMatch {
		t.Fatal("expected no match")
	}
	if verdict.Action != nil {
		t.Fatalf("no-match action must be nil, got %v", verdict.Action)
	}
	if verdict.ActionMessage != "No matching rules found" {
		t.Fatalf("no-match message contract broken: %q", verdict.ActionMessage)
	}

	drain()
	entries := sink.Entries()
	if len(entries) != 1 {
		t.Fatalf("no-match must still be audited once, got %d entries", len(entries))
	}
	if entries[0].Success {
		t.Fatal("audit success must be false on no-match")
	}
	if entries[0].MatchedRuleID != nil {
		t.Fatalf("no-match entry must carry no rule id, got %v", *entries[0].MatchedRuleID)
	}
}

func TestValidate_EmptyCatalog(t *testing.T) {
	service, sink, drain := newTestService(store.NewMemoryStore())

	verdict, err := service.Validate(context.Background(), testQuery(map[string]any{"make": "10"}))
	if err != nil {
		t.Fatal(err)
	}
	if verdict.IsMatch || verdict.ActionMessage != NoMatchMessage {
		t.Fatalf("empty catalog should yield the no-match verdict, got %+v", verdict)
	}

	drain()
	if got := len(sink.Entries()); got != 1 {
		t.Fatalf("want one audit entry, got %d", got)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	memStore := store.NewMemoryStore()
	seedRule(t, memStore, blockRuleParams("block make 10"))
	service, sink, drain := newTestService(memStore)

	query := testQuery(map[string]any{"make": "10"})
	first, err := service.Validate(context.Background(), query)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		verdict, err := service.Validate(context.Background(), query)
		if err != nil {
			t.Fatal(err)
		}
		if verdict.IsMatch != first.IsMatch || verdict.ActionMessage != first.ActionMessage {
			t.Fatalf("repeat %d produced a different verdict: %+v vs %+v", i, verdict, first)
		}
	}

	drain()
	if got := len(sink.Entries()); got != 5 {
		t.Fatalf("want one audit entry per call (5), got %d", got)
	}
}

func TestValidate_FirstMatchByRuleID(t *testing.T) {
	memStore := store.NewMemoryStore()

	first := blockRuleParams("first")
	first.ID = "0001-first"
	first.ActionMessage = "first wins"
	seedRule(t, memStore, first)

	second := blockRuleParams("second")
	second.ID = "0002-second"
	second.ActionMessage = "second loses"
	seedRule(t, memStore, second)

	service, _, drain := newTestService(memStore)
	defer drain()

	verdict, err := service.Validate(context.Background(), testQuery(map[string]any{"make": "10"}))
	if err != nil {
		t.Fatal(err)
	}
	if verdict.ActionMessage != "first wins" {
		t.Fatalf("lowest rule id must win, got %q", verdict.ActionMessage)
	}
}

type failingSource struct{}

func (failingSource) ListActiveRules(context.Context, rules.RuleType) ([]rules.Rule, error) {
	return nil, errors.New("pool exhausted")
}
func (failingSource) GetConditionGroups(context.Context, string) ([]rules.ConditionGroup, error) {
	return nil, errors.New("pool exhausted")
}
func (failingSource) GetConditions(context.Context, string) ([]rules.Condition, error) {
	return nil, errors.New("pool exhausted")
}

func TestValidate_StoreFailurePropagates(t *testing.T) {
	sink := audit.NewMemorySink()
	recorder := audit.NewRecorder(sink, 16)
	service := NewService(failingSource{}, recorder)

	_, err := service.Validate(context.Background(), testQuery(map[string]any{"make": "10"}))
	if err == nil {
		t.Fatal("total store failure must propagate")
	}

	_ = recorder.Close()
	if got := len(sink.Entries()); got != 0 {
		t.Fatalf("nothing was evaluated, nothing should be audited; got %d entries", got)
	}
}
