package sqlgen

import "strings"

// OperatorContext selects the clause position an operator is validated for.
type OperatorContext int

const (
	// OperatorContextWhere covers WHERE and HAVING clauses.
	OperatorContextWhere OperatorContext = iota
	// OperatorContextJoin covers JOIN ... ON conditions.
	OperatorContextJoin
)

var comparisonOperators = map[string]bool{
	"=":    true,
	">":    true,
	">=":   true,
	"<":    true,
	"<=":   true,
	"!=":   true,
	"LIKE": true,
}

// ValidOperator reports whether op is usable in the given clause context.
// Matching is case-insensitive. BETWEEN is a range operator and is only
// meaningful in WHERE/HAVING position, never in a join condition.
func ValidOperator(op string, ctx OperatorContext) bool {
	upper := strings.ToUpper(op)
	if comparisonOperators[upper] {
		return true
	}
	return ctx == OperatorContextWhere && upper == "BETWEEN"
}
