package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vehiclerules/internal/rules"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const ruleColumns = `id, name, rule_type, status, valid_until, action, action_message,
	customer_type, country, opportunity_source, expression, created_by, updated_by, updated_at`

// ListActiveRules retrieves all Active rules of the given type.
func (p *PostgresStore) ListActiveRules(ctx context.Context, ruleType rules.RuleType) ([]rules.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE status = $1 AND rule_type = $2 ORDER BY id`
	rows, err := p.pool.Query(ctx, query, string(rules.StatusActive), string(ruleType))
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// GetConditionGroups retrieves the condition groups owned by a rule.
func (p *PostgresStore) GetConditionGroups(ctx context.Context, ruleID string) ([]rules.ConditionGroup, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, rule_id, description FROM condition_groups WHERE rule_id = $1 ORDER BY position`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("get condition groups: %w", err)
	}
	defer rows.Close()

	var groups []rules.ConditionGroup
	for rows.Next() {
		var g rules.ConditionGroup
		if err := rows.Scan(&g.ID, &g.RuleID, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetConditions retrieves the conditions owned by a condition group.
func (p *PostgresStore) GetConditions(ctx context.Context, groupID string) ([]rules.Condition, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, group_id, parameter, operator, value, or_group
		 FROM conditions WHERE group_id = $1 ORDER BY position`, groupID)
	if err != nil {
		return nil, fmt.Errorf("get conditions: %w", err)
	}
	defer rows.Close()

	var conditions []rules.Condition
	for rows.Next() {
		var c rules.Condition
		var operator string
		if err := rows.Scan(&c.ID, &c.GroupID, &c.Parameter, &operator, &c.Value, &c.OrGroup); err != nil {
			return nil, err
		}
		c.Operator = rules.Operator(operator)
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

// ListRules retrieves all rules regardless of status.
func (p *PostgresStore) ListRules(ctx context.Context) ([]rules.Rule, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+ruleColumns+` FROM rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// GetRule retrieves a single rule by id.
func (p *PostgresStore) GetRule(ctx context.Context, id string) (*rules.Rule, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return &rule, nil
}

// UpsertRule creates or replaces a rule with its groups and conditions in a
// single transaction, so a concurrent validation read never sees a rule
// mid-update.
func (p *PostgresStore) UpsertRule(ctx context.Context, params UpsertParams) (*rules.Rule, error) {
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO rules (id, name, rule_type, status, valid_until, action, action_message,
			customer_type, country, opportunity_source, expression, created_by, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rule_type = EXCLUDED.rule_type,
			status = EXCLUDED.status,
			valid_until = EXCLUDED.valid_until,
			action = EXCLUDED.action,
			action_message = EXCLUDED.action_message,
			customer_type = EXCLUDED.customer_type,
			country = EXCLUDED.country,
			opportunity_source = EXCLUDED.opportunity_source,
			expression = EXCLUDED.expression,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`,
		id, params.Name, string(params.RuleType), string(params.Status), params.ValidUntil,
		params.Action, params.ActionMessage, params.CustomerType, params.Country,
		params.OpportunitySource, params.Expression, params.Actor, now)
	if err != nil {
		return nil, fmt.Errorf("upsert rule: %w", err)
	}

	// Replace the nested structure wholesale; conditions cascade with their
	// groups.
	if _, err := tx.Exec(ctx, `DELETE FROM condition_groups WHERE rule_id = $1`, id); err != nil {
		return nil, fmt.Errorf("replace condition groups: %w", err)
	}

	for gi, groupParams := range params.Groups {
		groupID := uuid.NewString()
		_, err = tx.Exec(ctx,
			`INSERT INTO condition_groups (id, rule_id, description, position) VALUES ($1, $2, $3, $4)`,
			groupID, id, groupParams.Description, gi)
		if err != nil {
			return nil, fmt.Errorf("insert condition group: %w", err)
		}
		for ci, conditionParams := range groupParams.Conditions {
			_, err = tx.Exec(ctx,
				`INSERT INTO conditions (id, group_id, parameter, operator, value, or_group, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				uuid.NewString(), groupID, conditionParams.Parameter,
				string(conditionParams.Operator), conditionParams.Value, conditionParams.OrGroup, ci)
			if err != nil {
				return nil, fmt.Errorf("insert condition: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}

	return p.GetRule(ctx, id)
}

// DeleteRule removes a rule; groups and conditions cascade via foreign keys.
func (p *PostgresStore) DeleteRule(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM rules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (rules.Rule, error) {
	var r rules.Rule
	var ruleType, status string
	err := row.Scan(&r.ID, &r.Name, &ruleType, &status, &r.ValidUntil, &r.Action,
		&r.ActionMessage, &r.CustomerType, &r.Country, &r.OpportunitySource,
		&r.Expression, &r.CreatedBy, &r.UpdatedBy, &r.UpdatedAt)
	if err != nil {
		return rules.Rule{}, err
	}
	r.RuleType = rules.RuleType(ruleType)
	r.Status = rules.Status(status)
	return r, nil
}

func scanRules(rows pgx.Rows) ([]rules.Rule, error) {
	var result []rules.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
