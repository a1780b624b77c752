package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vehiclerules/internal/rules"
	"vehiclerules/internal/store"
)

// ruleDetail is the read-side representation of a rule with its nested
// condition structure.
type ruleDetail struct {
	rules.Rule
	Groups []groupDetail `json:"groups"`
}

type groupDetail struct {
	rules.ConditionGroup
	Conditions []rules.Condition `json:"conditions"`
}

// handleUpsertRule handles PUT /v1/rules.
func (s *Server) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	var params store.UpsertParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	if strings.TrimSpace(params.Actor) == "" {
		params.Actor = s.defaultActor
	}

	if result := rules.ValidateRule(upsertRule(params), upsertConditions(params)); !result.Valid {
		ValidationError(w, r, "invalid rule", result.Errors)
		return
	}

	rule, err := s.store.UpsertRule(r.Context(), params)
	if err != nil {
		InternalError(w, r, "rule upsert failed")
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// handleListRules handles GET /v1/rules.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListRules(r.Context())
	if err != nil {
		InternalError(w, r, "rule list failed")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetRule handles GET /v1/rules/{id}, returning the rule with its
// groups and conditions.
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rule, err := s.store.GetRule(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			NotFoundError(w, r, "rule not found")
			return
		}
		InternalError(w, r, "rule read failed")
		return
	}

	groups, err := s.store.GetConditionGroups(r.Context(), rule.ID)
	if err != nil {
		InternalError(w, r, "rule read failed")
		return
	}

	detail := ruleDetail{Rule: *rule, Groups: make([]groupDetail, 0, len(groups))}
	for _, group := range groups {
		conditions, err := s.store.GetConditions(r.Context(), group.ID)
		if err != nil {
			InternalError(w, r, "rule read failed")
			return
		}
		detail.Groups = append(detail.Groups, groupDetail{ConditionGroup: group, Conditions: conditions})
	}

	writeJSON(w, http.StatusOK, detail)
}

// handleDeleteRule handles DELETE /v1/rules/{id}. Deleting an unknown rule
// is a no-op.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		InternalError(w, r, "rule delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// upsertRule projects write params onto the domain rule for validation.
func upsertRule(params store.UpsertParams) rules.Rule {
	return rules.Rule{
		ID:                params.ID,
		Name:              params.Name,
		RuleType:          params.RuleType,
		Status:            params.Status,
		ValidUntil:        params.ValidUntil,
		Action:            params.Action,
		ActionMessage:     params.ActionMessage,
		CustomerType:      params.CustomerType,
		Country:           params.Country,
		OpportunitySource: params.OpportunitySource,
		Expression:        params.Expression,
	}
}

func upsertConditions(params store.UpsertParams) [][]rules.Condition {
	groups := make([][]rules.Condition, 0, len(params.Groups))
	for _, group := range params.Groups {
		conditions := make([]rules.Condition, 0, len(group.Conditions))
		for _, c := range group.Conditions {
			conditions = append(conditions, rules.Condition{
				Parameter: c.Parameter,
				Operator:  c.Operator,
				Value:     c.Value,
				OrGroup:   c.OrGroup,
			})
		}
		groups = append(groups, conditions)
	}
	return groups
}
