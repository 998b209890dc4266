package builder

import "fmt"

// Count appends a COUNT projection, defaulting to COUNT(*) when no field
// is given. Aggregates route through the same projection list as Select,
// so they compose with plain field selection.
func (b *Builder) Count(field ...string) *Builder {
	if b.err != nil {
		return b
	}
	if len(field) > 1 {
		return b.fail(fmt.Errorf("%w: count accepts one optional field, got %d", ErrInvalidArgument, len(field)))
	}
	target := "*"
	if len(field) == 1 && field[0] != "" {
		target = field[0]
	}
	return b.selectExpr(fmt.Sprintf("COUNT(%s)", target))
}

// Max appends a MAX(field) projection.
func (b *Builder) Max(field string) *Builder {
	return b.aggregate("MAX", field)
}

// Min appends a MIN(field) projection.
func (b *Builder) Min(field string) *Builder {
	return b.aggregate("MIN", field)
}

// Sum appends a SUM(field) projection.
func (b *Builder) Sum(field string) *Builder {
	return b.aggregate("SUM", field)
}

// Avg appends an AVG(field) projection.
func (b *Builder) Avg(field string) *Builder {
	return b.aggregate("AVG", field)
}

func (b *Builder) aggregate(fn, field string) *Builder {
	if b.err != nil {
		return b
	}
	if field == "" {
		return b.fail(fmt.Errorf("%w: %s expects a non-empty field name", ErrInvalidArgument, fn))
	}
	return b.selectExpr(fmt.Sprintf("%s(%s)", fn, field))
}

// Round appends a ROUND(field, decimals) projection.
func (b *Builder) Round(field string, decimals int) *Builder {
	if b.err != nil {
		return b
	}
	if field == "" {
		return b.fail(fmt.Errorf("%w: ROUND expects a non-empty field name", ErrInvalidArgument))
	}
	if decimals < 0 {
		return b.fail(fmt.Errorf("%w: ROUND decimals %d, expected a non-negative count", ErrInvalidArgument, decimals))
	}
	return b.selectExpr(fmt.Sprintf("ROUND(%s, %d)", field, decimals))
}

// Greatest appends a GREATEST(f1, f2, ...) projection over two or more
// fields.
func (b *Builder) Greatest(fields ...string) *Builder {
	if b.err != nil {
		return b
	}
	if len(fields) < 2 {
		return b.fail(fmt.Errorf("%w: GREATEST requires at least 2 fields, got %d", ErrInvalidArgument, len(fields)))
	}
	for i, f := range fields {
		if f == "" {
			return b.fail(fmt.Errorf("%w: GREATEST field %d is empty, expected a column name", ErrInvalidArgument, i))
		}
	}
	return b.selectExpr(fmt.Sprintf("GREATEST(%s)", joinComma(fields)))
}
