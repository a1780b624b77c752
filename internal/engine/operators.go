package engine

import (
	"encoding/json"
	"strconv"
	"strings"

	"vehiclerules/internal/rules"
)

// OperatorHandler evaluates one condition operator against a candidate value
// from the query and the condition's stored value.
type OperatorHandler interface {
	// Check reports whether the candidate satisfies the stored value under
	// this operator. Implementations fail closed: any coercion failure or
	// malformed stored value yields false, never an error.
	Check(candidate any, stored string) bool
}

var operatorHandlers = map[rules.Operator]OperatorHandler{
	rules.OpEq:      equalsHandler{},
	rules.OpNeq:     notEqualsHandler{},
	rules.OpIn:      inHandler{},
	rules.OpNotIn:   notInHandler{},
	rules.OpGt:      numericCompareHandler{cmp: func(a, b float64) bool { return a > b }},
	rules.OpLt:      numericCompareHandler{cmp: func(a, b float64) bool { return a < b }},
	rules.OpGte:     numericCompareHandler{cmp: func(a, b float64) bool { return a >= b }},
	rules.OpLte:     numericCompareHandler{cmp: func(a, b float64) bool { return a <= b }},
	rules.OpBetween: betweenHandler{},
}

func getOperatorHandler(op rules.Operator) (OperatorHandler, bool) {
	h, ok := operatorHandlers[normalizeOperator(op)]
	return h, ok
}

// normalizeOperator maps word aliases onto the canonical symbolic operators
// so rules imported from older catalogs keep evaluating.
func normalizeOperator(op rules.Operator) rules.Operator {
	switch strings.ToUpper(strings.TrimSpace(string(op))) {
	case "=", "==", "EQ", "EQUALS":
		return rules.OpEq
	case "!=", "<>", "NEQ", "NOT_EQUALS":
		return rules.OpNeq
	case "IN":
		return rules.OpIn
	case "NOT IN", "NOT_IN", "NIN":
		return rules.OpNotIn
	case ">", "GT":
		return rules.OpGt
	case "<", "LT":
		return rules.OpLt
	case ">=", "GTE":
		return rules.OpGte
	case "<=", "LTE":
		return rules.OpLte
	case "BETWEEN":
		return rules.OpBetween
	default:
		return op
	}
}

// EvaluateCondition checks one condition against the query attribute map.
// An absent or nil candidate value never matches, regardless of operator;
// unknown operators evaluate to false.
func EvaluateCondition(c rules.Condition, attributes map[string]any) bool {
	candidate, ok := attributes[c.Parameter]
	if !ok || candidate == nil {
		return false
	}
	handler, ok := getOperatorHandler(c.Operator)
	if !ok {
		return false
	}
	return handler.Check(candidate, c.Value)
}

// equalsHandler compares the stringified candidate to the stored value.
// Equality is deliberately a string comparison: rule values are authored as
// strings (enumerated ids included), so callers pass values normalized to the
// same representation.
type equalsHandler struct{}

func (equalsHandler) Check(candidate any, stored string) bool {
	s, ok := stringify(candidate)
	return ok && s == stored
}

type notEqualsHandler struct{}

func (notEqualsHandler) Check(candidate any, stored string) bool {
	s, ok := stringify(candidate)
	return ok && s != stored
}

type numericCompareHandler struct {
	cmp func(candidate, stored float64) bool
}

func (h numericCompareHandler) Check(candidate any, stored string) bool {
	c, ok := toFloat64(candidate)
	if !ok {
		return false
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(stored), 64)
	if err != nil {
		return false
	}
	return h.cmp(c, s)
}

// inHandler splits the stored value on commas, trims each segment and tests
// membership of the stringified candidate.
type inHandler struct{}

func (inHandler) Check(candidate any, stored string) bool {
	s, ok := stringify(candidate)
	if !ok {
		return false
	}
	for _, segment := range strings.Split(stored, ",") {
		if s == strings.TrimSpace(segment) {
			return true
		}
	}
	return false
}

type notInHandler struct{}

func (notInHandler) Check(candidate any, stored string) bool {
	if _, ok := stringify(candidate); !ok {
		return false
	}
	return !(inHandler{}).Check(candidate, stored)
}

// betweenHandler expects exactly two numeric bounds "min,max"; both bounds
// are inclusive.
type betweenHandler struct{}

func (betweenHandler) Check(candidate any, stored string) bool {
	c, ok := toFloat64(candidate)
	if !ok {
		return false
	}
	bounds := strings.Split(stored, ",")
	if len(bounds) != 2 {
		return false
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64)
	if err != nil {
		return false
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64)
	if err != nil {
		return false
	}
	return c >= min && c <= max
}

// stringify renders a scalar candidate the way rule values are authored.
// Floats use the minimal representation so 6.0 (a JSON number) compares equal
// to the stored "6".
func stringify(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int32:
		return strconv.FormatInt(int64(s), 10), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
