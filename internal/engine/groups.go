package engine

import "vehiclerules/internal/rules"

// unitKey identifies the OR-unit a condition belongs to. A tagged condition
// joins the unit of every condition sharing its tag; an untagged condition is
// its own singleton unit, keyed by its id so two untagged conditions can
// never merge.
type unitKey struct {
	tagged      bool
	orGroup     int
	conditionID string
}

func conditionUnitKey(c rules.Condition) unitKey {
	if c.OrGroup != nil {
		return unitKey{tagged: true, orGroup: *c.OrGroup}
	}
	return unitKey{conditionID: c.ID}
}

// GroupSatisfied reports whether one condition group's conditions hold for
// the query attributes: AND across units, OR within a unit. An empty
// condition list is vacuously satisfied.
func GroupSatisfied(conditions []rules.Condition, attributes map[string]any) bool {
	units := make(map[unitKey][]rules.Condition)
	for _, c := range conditions {
		key := conditionUnitKey(c)
		units[key] = append(units[key], c)
	}

	for _, members := range units {
		satisfied := false
		for _, c := range members {
			if EvaluateCondition(c, attributes) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
