package builder

import (
	"fmt"

	"github.com/querycraft/querycraft/query/sqlgen"
)

type joinClause struct {
	kind     string
	table    string
	left     string
	operator string
	right    string
}

// Join appends an INNER JOIN with an ON condition comparing two fields.
func (b *Builder) Join(table, left, operator, right string) *Builder {
	return b.addJoin("INNER", table, left, operator, right)
}

// LeftJoin appends a LEFT JOIN.
func (b *Builder) LeftJoin(table, left, operator, right string) *Builder {
	return b.addJoin("LEFT", table, left, operator, right)
}

// RightJoin appends a RIGHT JOIN.
func (b *Builder) RightJoin(table, left, operator, right string) *Builder {
	return b.addJoin("RIGHT", table, left, operator, right)
}

// FullOuterJoin appends a FULL OUTER JOIN.
func (b *Builder) FullOuterJoin(table, left, operator, right string) *Builder {
	return b.addJoin("FULL OUTER", table, left, operator, right)
}

func (b *Builder) addJoin(kind, table, left, operator, right string) *Builder {
	if b.err != nil {
		return b
	}
	if table == "" || left == "" || right == "" {
		return b.fail(fmt.Errorf("%w: join expects non-empty table and field names, got table %q on %q and %q", ErrInvalidArgument, table, left, right))
	}
	if !sqlgen.ValidOperator(operator, sqlgen.OperatorContextJoin) {
		return b.fail(fmt.Errorf("%w: operator %q is not valid in a join condition", ErrInvalidArgument, operator))
	}
	b.joins = append(b.joins, joinClause{
		kind:     kind,
		table:    table,
		left:     left,
		operator: operator,
		right:    right,
	})
	return b
}
