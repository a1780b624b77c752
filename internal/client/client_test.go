package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vehiclerules/internal/engine"
	"vehiclerules/internal/rules"
	"vehiclerules/internal/validation"
)

func TestValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/validate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var query engine.Query
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			t.Errorf("decode query: %v", err)
		}
		if query.Country != "CZ" {
			t.Errorf("query not forwarded: %+v", query)
		}
		action := "Block"
		_ = json.NewEncoder(w).Encode(validation.Verdict{IsMatch: true, Action: &action, ActionMessage: "blocked"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	verdict, err := c.Validate(context.Background(), engine.Query{
		RuleType:          rules.RuleTypeGlobal,
		Country:           "CZ",
		CustomerType:      "Retail",
		OpportunitySource: "Web",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !verdict.IsMatch || verdict.ActionMessage != "blocked" {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestValidate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"rule store unavailable"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	_, err := c.Validate(context.Background(), engine.Query{})
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error should carry the status: %v", err)
	}
}

func TestListRules_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer admin-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode([]rules.Rule{{ID: "r1", Name: "one"}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "admin-key")
	list, err := c.ListRules(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "r1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}
