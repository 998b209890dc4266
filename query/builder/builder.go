// Package builder provides a fluent MySQL query builder. A Builder
// accumulates the clauses of exactly one SELECT, UPDATE, INSERT or DELETE
// statement and renders it to text with Build. Builders are single-use,
// mutable and not safe for concurrent use; the first invalid call is
// latched and surfaced by Build.
package builder

import (
	"fmt"

	"github.com/querycraft/querycraft/query/sqlgen"
)

type queryKind int

const (
	kindNone queryKind = iota
	kindSelect
	kindUpdate
	kindInsert
	kindDelete
)

func (k queryKind) String() string {
	switch k {
	case kindSelect:
		return "select"
	case kindUpdate:
		return "update"
	case kindInsert:
		return "insert"
	case kindDelete:
		return "delete"
	default:
		return "unset"
	}
}

// Builder accumulates one logical DML statement.
type Builder struct {
	table        string
	kind         queryKind
	selects      []string
	distinct     bool
	joins        []joinClause
	where        string
	groupBy      string
	having       string
	orderBy      []string
	orderDir     map[string]string
	limit        int
	offset       int
	hasLimit     bool
	hasOffset    bool
	updates      map[string]string
	insertFields []string
	insertRows   []string
	deleteMod    string
	err          error
}

// New creates an empty query builder.
func New() *Builder {
	return &Builder{orderDir: map[string]string{}}
}

// Err returns the first violation recorded on the builder, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// setKind latches the statement kind. Exactly one of select/update/insert/
// delete may be active per builder.
func (b *Builder) setKind(k queryKind) bool {
	if b.kind == kindNone {
		b.kind = k
		return true
	}
	if b.kind != k {
		b.fail(fmt.Errorf("%w: query kind already set to %s, cannot switch to %s", ErrLogic, b.kind, k))
		return false
	}
	return true
}

// Table sets the target table. Required before Build.
func (b *Builder) Table(name string) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail(fmt.Errorf("%w: table expects a non-empty name", ErrInvalidArgument))
	}
	b.table = name
	return b
}

// Select adds projection expressions and marks the builder as a SELECT.
// Non-string elements are silently dropped; no arguments (or an empty,
// all-string-free call that started empty) selects *. Dropping every
// element of a non-empty argument list is an error.
func (b *Builder) Select(fields ...any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.setKind(kindSelect) {
		return b
	}
	if len(fields) == 0 {
		return b
	}
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if s, ok := f.(string); ok && s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return b.fail(fmt.Errorf("%w: select received %d fields, none of them strings", ErrInvalidArgument, len(fields)))
	}
	b.selects = append(b.selects, kept...)
	return b
}

// Distinct renders the projection as SELECT DISTINCT.
func (b *Builder) Distinct() *Builder {
	if b.err != nil {
		return b
	}
	b.distinct = true
	return b
}

// selectExpr appends a pre-formatted projection expression through the
// same path as Select, so aggregates compose with plain fields.
func (b *Builder) selectExpr(expr string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.setKind(kindSelect) {
		return b
	}
	b.selects = append(b.selects, expr)
	return b
}

// GroupBy sets the grouping field. HAVING renders only when a group is set.
func (b *Builder) GroupBy(field string) *Builder {
	if b.err != nil {
		return b
	}
	if field == "" {
		return b.fail(fmt.Errorf("%w: groupBy expects a non-empty field name", ErrInvalidArgument))
	}
	b.groupBy = field
	return b
}

// Having sets the single HAVING condition. The operator set and value
// handling (including BETWEEN ranges) match Where.
func (b *Builder) Having(field, operator string, value any) *Builder {
	if b.err != nil {
		return b
	}
	text, err := renderCondition(Clause{Field: field, Operator: operator, Value: value})
	if err != nil {
		return b.fail(err)
	}
	b.having = text
	return b
}

// OrderBy adds a sort key. Direction is case-insensitive ASC or DESC;
// repeating a field updates its direction without duplicating the key.
func (b *Builder) OrderBy(field, direction string) *Builder {
	if b.err != nil {
		return b
	}
	if field == "" {
		return b.fail(fmt.Errorf("%w: orderBy expects a non-empty field name", ErrInvalidArgument))
	}
	dir, ok := normalizeDirection(direction)
	if !ok {
		return b.fail(fmt.Errorf("%w: orderBy direction %q, expected ASC or DESC", ErrInvalidArgument, direction))
	}
	if _, seen := b.orderDir[field]; !seen {
		b.orderBy = append(b.orderBy, field)
	}
	b.orderDir[field] = dir
	return b
}

// Limit caps the row count, with an optional offset rendered in MySQL's
// "LIMIT offset, n" form.
func (b *Builder) Limit(n int, offset ...int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		return b.fail(fmt.Errorf("%w: limit %d, expected a non-negative count", ErrInvalidArgument, n))
	}
	if len(offset) > 1 {
		return b.fail(fmt.Errorf("%w: limit accepts one optional offset, got %d", ErrInvalidArgument, len(offset)))
	}
	if len(offset) == 1 {
		if offset[0] < 0 {
			return b.fail(fmt.Errorf("%w: offset %d, expected a non-negative offset", ErrInvalidArgument, offset[0]))
		}
		b.offset = offset[0]
		b.hasOffset = true
	}
	b.limit = n
	b.hasLimit = true
	return b
}

// First limits the query to a single row from the start of the result.
func (b *Builder) First() *Builder {
	return b.Limit(1, 0)
}

// Update sets the assignment map and marks the builder as an UPDATE.
// Every value is passed through the value encoder.
func (b *Builder) Update(values map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.setKind(kindUpdate) {
		return b
	}
	if len(values) == 0 {
		return b.fail(fmt.Errorf("%w: update expects at least one assignment", ErrInvalidArgument))
	}
	encoded := make(map[string]string, len(values))
	for field, value := range values {
		if field == "" {
			return b.fail(fmt.Errorf("%w: update assignment with an empty field name", ErrInvalidArgument))
		}
		text, err := sqlgen.Encode(value)
		if err != nil {
			return b.fail(fmt.Errorf("update of %q: %w", field, err))
		}
		encoded[field] = text
	}
	b.updates = encoded
	return b
}

// Insert sets the column list and value rows and marks the builder as an
// INSERT. Every row must match the column count; every value is passed
// through the value encoder.
func (b *Builder) Insert(fields []string, rows [][]any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.setKind(kindInsert) {
		return b
	}
	if len(fields) == 0 {
		return b.fail(fmt.Errorf("%w: insert expects at least one field", ErrInvalidArgument))
	}
	for i, f := range fields {
		if f == "" {
			return b.fail(fmt.Errorf("%w: insert field %d is empty, expected a column name", ErrInvalidArgument, i))
		}
	}
	if len(rows) == 0 {
		return b.fail(fmt.Errorf("%w: insert expects at least one row", ErrInvalidArgument))
	}
	rendered := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(fields) {
			return b.fail(fmt.Errorf("%w: insert row %d has %d values, expected %d", ErrInvalidArgument, i, len(row), len(fields)))
		}
		values := make([]string, len(row))
		for j, value := range row {
			text, err := sqlgen.Encode(value)
			if err != nil {
				return b.fail(fmt.Errorf("insert row %d value %d: %w", i, j, err))
			}
			values[j] = text
		}
		rendered = append(rendered, "("+joinComma(values)+")")
	}
	b.insertFields = append([]string{}, fields...)
	b.insertRows = rendered
	return b
}

// Delete marks the builder as a DELETE with an optional modifier keyword
// (LOW_PRIORITY, QUICK or IGNORE).
func (b *Builder) Delete(modifier ...string) *Builder {
	if b.err != nil {
		return b
	}
	if !b.setKind(kindDelete) {
		return b
	}
	if len(modifier) > 1 {
		return b.fail(fmt.Errorf("%w: delete accepts one optional modifier, got %d", ErrInvalidArgument, len(modifier)))
	}
	if len(modifier) == 1 && modifier[0] != "" {
		mod, ok := normalizeDeleteModifier(modifier[0])
		if !ok {
			return b.fail(fmt.Errorf("%w: delete modifier %q, expected LOW_PRIORITY, QUICK or IGNORE", ErrInvalidArgument, modifier[0]))
		}
		b.deleteMod = mod
	}
	return b
}
