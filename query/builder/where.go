package builder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/querycraft/querycraft/query/sqlgen"
)

// Clause is one field/operator/value condition contributing to a WHERE or
// HAVING clause.
type Clause struct {
	Field    string
	Operator string
	Value    any
}

// Cond builds an equality clause.
func Cond(field string, value any) Clause {
	return Clause{Field: field, Operator: "=", Value: value}
}

// Cmp builds a comparison clause with an explicit operator.
func Cmp(field, operator string, value any) Clause {
	return Clause{Field: field, Operator: operator, Value: value}
}

// Between builds a range clause rendered as "field BETWEEN low AND high".
func Between(field string, low, high any) Clause {
	return Clause{Field: field, Operator: "BETWEEN", Value: []any{low, high}}
}

// Where appends a condition joined with AND. One trailing argument is the
// value compared with "="; two are (operator, value). Any other arity is
// an error.
func (b *Builder) Where(field string, args ...any) *Builder {
	return b.scalarWhere("AND", field, args)
}

// OrWhere appends a condition joined with OR, with the same argument
// shapes as Where.
func (b *Builder) OrWhere(field string, args ...any) *Builder {
	return b.scalarWhere("OR", field, args)
}

// WhereClauses appends a batch of clauses, each joined with AND. A batch
// of scalar Where calls and a single WhereClauses call with the same
// content render identically.
func (b *Builder) WhereClauses(clauses ...Clause) *Builder {
	return b.batchWhere("AND", clauses)
}

// OrWhereClauses appends a batch of clauses, each joined with OR.
func (b *Builder) OrWhereClauses(clauses ...Clause) *Builder {
	return b.batchWhere("OR", clauses)
}

func (b *Builder) scalarWhere(connective, field string, args []any) *Builder {
	if b.err != nil {
		return b
	}
	clause := Clause{Field: field}
	switch len(args) {
	case 1:
		clause.Operator = "="
		clause.Value = args[0]
	case 2:
		op, ok := args[0].(string)
		if !ok {
			return b.fail(fmt.Errorf("%w: where operator %v (%T), expected a string", ErrInvalidArgument, args[0], args[0]))
		}
		clause.Operator = op
		clause.Value = args[1]
	default:
		return b.fail(fmt.Errorf("%w: where clause on %q has %d elements, expected field plus value or field plus operator and value", ErrInvalidArgument, field, len(args)+1))
	}
	return b.appendCondition(connective, clause)
}

func (b *Builder) batchWhere(connective string, clauses []Clause) *Builder {
	if b.err != nil {
		return b
	}
	if len(clauses) == 0 {
		return b.fail(fmt.Errorf("%w: where expects at least one clause", ErrInvalidArgument))
	}
	for _, clause := range clauses {
		b.appendCondition(connective, clause)
	}
	return b
}

func (b *Builder) appendCondition(connective string, clause Clause) *Builder {
	if b.err != nil {
		return b
	}
	text, err := renderCondition(clause)
	if err != nil {
		return b.fail(err)
	}
	b.appendWhere(connective, text)
	return b
}

// appendWhere joins rendered condition text onto the accumulated WHERE
// body. The WHERE keyword itself is added at render time.
func (b *Builder) appendWhere(connective, text string) {
	if b.where == "" {
		b.where = text
		return
	}
	b.where += " " + connective + " " + text
}

// renderCondition renders one clause to SQL text. BETWEEN takes exactly a
// two-element range; every other operator takes a scalar or nil value.
func renderCondition(clause Clause) (string, error) {
	if clause.Field == "" {
		return "", fmt.Errorf("%w: where clause with an empty field name", ErrInvalidArgument)
	}
	if !sqlgen.ValidOperator(clause.Operator, sqlgen.OperatorContextWhere) {
		return "", fmt.Errorf("%w: operator %q is not valid in a where clause", ErrInvalidArgument, clause.Operator)
	}
	op := strings.ToUpper(clause.Operator)
	if op == "BETWEEN" {
		low, high, err := betweenRange(clause)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", clause.Field, low, high), nil
	}
	if isComposite(clause.Value) {
		return "", fmt.Errorf("%w: where value for %q is %T, an array value requires the BETWEEN operator", ErrInvalidArgument, clause.Field, clause.Value)
	}
	value, err := sqlgen.Encode(clause.Value)
	if err != nil {
		return "", fmt.Errorf("where clause on %q: %w", clause.Field, err)
	}
	return fmt.Sprintf("%s %s %s", clause.Field, op, value), nil
}

func betweenRange(clause Clause) (string, string, error) {
	bounds, ok := clause.Value.([]any)
	if !ok || len(bounds) != 2 {
		return "", "", fmt.Errorf("%w: BETWEEN on %q requires a 2-element range, got %v (%T)", ErrInvalidArgument, clause.Field, clause.Value, clause.Value)
	}
	low, err := sqlgen.Encode(bounds[0])
	if err != nil {
		return "", "", fmt.Errorf("BETWEEN on %q: %w", clause.Field, err)
	}
	high, err := sqlgen.Encode(bounds[1])
	if err != nil {
		return "", "", fmt.Errorf("BETWEEN on %q: %w", clause.Field, err)
	}
	return low, high, nil
}

func isComposite(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// WhereIn appends "field IN(...)" joined with AND, encoding every value.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	return b.whereIn(field, values, false)
}

// WhereNotIn appends "field NOT IN(...)" joined with AND.
func (b *Builder) WhereNotIn(field string, values []any) *Builder {
	return b.whereIn(field, values, true)
}

func (b *Builder) whereIn(field string, values []any, negate bool) *Builder {
	if b.err != nil {
		return b
	}
	if field == "" {
		return b.fail(fmt.Errorf("%w: whereIn expects a non-empty field name", ErrInvalidArgument))
	}
	if len(values) == 0 {
		return b.fail(fmt.Errorf("%w: whereIn on %q expects at least one value", ErrInvalidArgument, field))
	}
	encoded := make([]string, len(values))
	for i, value := range values {
		text, err := sqlgen.Encode(value)
		if err != nil {
			return b.fail(fmt.Errorf("whereIn on %q: %w", field, err))
		}
		encoded[i] = text
	}
	keyword := "IN"
	if negate {
		keyword = "NOT IN"
	}
	b.appendWhere("AND", fmt.Sprintf("%s %s(%s)", field, keyword, joinComma(encoded)))
	return b
}

// WhereRaw replaces the accumulated WHERE body with verbatim SQL text,
// bypassing validation and discarding anything built before it. Later
// Where/OrWhere calls append to the raw text with the usual connectives.
func (b *Builder) WhereRaw(condition string) *Builder {
	if b.err != nil {
		return b
	}
	if condition == "" {
		return b.fail(fmt.Errorf("%w: whereRaw expects a non-empty condition", ErrInvalidArgument))
	}
	b.where = condition
	return b
}

func joinComma(parts []string) string {
	return strings.Join(parts, ", ")
}
