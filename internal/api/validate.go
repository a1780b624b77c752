package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"vehiclerules/internal/engine"
	"vehiclerules/internal/rules"
)

// handleValidate handles POST /v1/validate.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var query engine.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	if fields := validateQuery(query); len(fields) > 0 {
		ValidationError(w, r, "invalid validation query", fields)
		return
	}

	verdict, err := s.validator.Validate(r.Context(), query)
	if err != nil {
		// No rules could be read at all; nothing was evaluated.
		InternalError(w, r, "rule store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

// validateQuery checks the scalar context fields. Wildcards live on the rule
// side only; a query must always carry concrete values.
func validateQuery(q engine.Query) map[string]string {
	fields := make(map[string]string)

	if q.RuleType != rules.RuleTypeGlobal && q.RuleType != rules.RuleTypeLocal {
		fields["ruleType"] = "ruleType must be Global or Local"
	}
	for _, field := range []struct{ name, value string }{
		{"country", q.Country},
		{"customerType", q.CustomerType},
		{"opportunitySource", q.OpportunitySource},
	} {
		switch {
		case strings.TrimSpace(field.value) == "":
			fields[field.name] = field.name + " is required"
		case field.value == rules.Wildcard:
			fields[field.name] = field.name + " must be a concrete value, not the wildcard"
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
