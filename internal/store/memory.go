package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vehiclerules/internal/rules"
)

// MemoryStore is an in-memory implementation of the Store interface, backed
// by maps and an RWMutex. Suitable for development, testing, or
// single-instance deployments.
type MemoryStore struct {
	mu         sync.RWMutex
	rules      map[string]rules.Rule             // rule id -> rule
	groups     map[string][]rules.ConditionGroup // rule id -> groups
	conditions map[string][]rules.Condition      // group id -> conditions
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules:      make(map[string]rules.Rule),
		groups:     make(map[string][]rules.ConditionGroup),
		conditions: make(map[string][]rules.Condition),
	}
}

// ListActiveRules retrieves all Active rules of the given type.
func (m *MemoryStore) ListActiveRules(ctx context.Context, ruleType rules.RuleType) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rules.Rule, 0, len(m.rules)/2)
	for _, rule := range m.rules {
		if rule.Status == rules.StatusActive && rule.RuleType == ruleType {
			result = append(result, rule)
		}
	}
	return result, nil
}

// GetConditionGroups retrieves the condition groups owned by a rule.
func (m *MemoryStore) GetConditionGroups(ctx context.Context, ruleID string) ([]rules.ConditionGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := m.groups[ruleID]
	result := make([]rules.ConditionGroup, len(groups))
	copy(result, groups)
	return result, nil
}

// GetConditions retrieves the conditions owned by a condition group.
func (m *MemoryStore) GetConditions(ctx context.Context, groupID string) ([]rules.Condition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conditions := m.conditions[groupID]
	result := make([]rules.Condition, len(conditions))
	copy(result, conditions)
	return result, nil
}

// ListRules retrieves all rules regardless of status.
func (m *MemoryStore) ListRules(ctx context.Context) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rules.Rule, 0, len(m.rules))
	for _, rule := range m.rules {
		result = append(result, rule)
	}
	return result, nil
}

// GetRule retrieves a single rule by id.
func (m *MemoryStore) GetRule(ctx context.Context, id string) (*rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rule, exists := m.rules[id]
	if !exists {
		return nil, ErrRuleNotFound
	}
	return &rule, nil
}

// UpsertRule creates or replaces a rule and its nested groups/conditions
// under one lock acquisition, so concurrent reads never observe a rule
// mid-update.
func (m *MemoryStore) UpsertRule(ctx context.Context, params UpsertParams) (*rules.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := params.ID
	createdBy := params.Actor
	if id == "" {
		id = uuid.NewString()
	} else if existing, ok := m.rules[id]; ok {
		createdBy = existing.CreatedBy
	}

	rule := rules.Rule{
		ID:                id,
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
		CreatedBy:         createdBy,
		UpdatedBy:         params.Actor,
		UpdatedAt:         time.Now().UTC(),
	}

	m.dropOwned(id)

	groups := make([]rules.ConditionGroup, 0, len(params.Groups))
	for _, groupParams := range params.Groups {
		group := rules.ConditionGroup{
			ID:          uuid.NewString(),
			RuleID:      id,
			Description: groupParams.Description,
		}
		conditions := make([]rules.Condition, 0, len(groupParams.Conditions))
		for _, conditionParams := range groupParams.Conditions {
			conditions = append(conditions, rules.Condition{
				ID:        uuid.NewString(),
				GroupID:   group.ID,
				Parameter: conditionParams.Parameter,
				Operator:  conditionParams.Operator,
				Value:     conditionParams.Value,
				OrGroup:   conditionParams.OrGroup,
			})
		}
		m.conditions[group.ID] = conditions
		groups = append(groups, group)
	}

	m.rules[id] = rule
	m.groups[id] = groups
	return &rule, nil
}

// DeleteRule removes a rule and cascades to its groups and conditions.
func (m *MemoryStore) DeleteRule(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropOwned(id)
	delete(m.rules, id)
	return nil
}

// dropOwned removes a rule's groups and their conditions. Caller holds the
// write lock.
func (m *MemoryStore) dropOwned(ruleID string) {
	for _, group := range m.groups[ruleID] {
		delete(m.conditions, group.ID)
	}
	delete(m.groups, ruleID)
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
