package builder

import (
	"fmt"
	"sort"
	"strings"
)

// Build renders the accumulated statement. The clause order is fixed per
// statement kind: keyword and target first, the kind-specific body, then
// WHERE, GROUP BY/HAVING (select only), ORDER BY and LIMIT. Build is a
// pure read of builder state: repeated calls return the same text.
func (b *Builder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.table == "" {
		return "", fmt.Errorf("%w: no table set", ErrLogic)
	}
	switch b.kind {
	case kindSelect:
		return b.buildSelect(), nil
	case kindUpdate:
		return b.buildUpdate(), nil
	case kindInsert:
		return b.buildInsert(), nil
	case kindDelete:
		return b.buildDelete(), nil
	default:
		return "", fmt.Errorf("%w: no query kind set, call Select, Update, Insert or Delete first", ErrLogic)
	}
}

// String renders the statement, or an empty string when the builder
// cannot render.
func (b *Builder) String() string {
	text, err := b.Build()
	if err != nil {
		return ""
	}
	return text
}

func (b *Builder) buildSelect() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(b.selects) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(joinComma(b.selects))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	for _, j := range b.joins {
		fmt.Fprintf(&sb, " %s JOIN %s ON %s %s %s", j.kind, j.table, j.left, j.operator, j.right)
	}
	b.writeWhere(&sb)
	if b.groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(b.groupBy)
		if b.having != "" {
			sb.WriteString(" HAVING ")
			sb.WriteString(b.having)
		}
	}
	b.writeOrderBy(&sb)
	b.writeLimit(&sb)
	return sb.String()
}

func (b *Builder) buildUpdate() string {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	fields := make([]string, 0, len(b.updates))
	for field := range b.updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	assignments := make([]string, len(fields))
	for i, field := range fields {
		assignments[i] = field + " = " + b.updates[field]
	}
	sb.WriteString(joinComma(assignments))
	b.writeWhere(&sb)
	b.writeOrderBy(&sb)
	b.writeLimit(&sb)
	return sb.String()
}

func (b *Builder) buildInsert() string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.table)
	sb.WriteString(" (")
	sb.WriteString(joinComma(b.insertFields))
	sb.WriteString(") VALUES ")
	sb.WriteString(joinComma(b.insertRows))
	return sb.String()
}

func (b *Builder) buildDelete() string {
	var sb strings.Builder
	sb.WriteString("DELETE ")
	if b.deleteMod != "" {
		sb.WriteString(b.deleteMod)
		sb.WriteString(" ")
	}
	sb.WriteString("FROM ")
	sb.WriteString(b.table)
	b.writeWhere(&sb)
	b.writeOrderBy(&sb)
	b.writeLimit(&sb)
	return sb.String()
}

func (b *Builder) writeWhere(sb *strings.Builder) {
	if b.where == "" {
		return
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(b.where)
}

func (b *Builder) writeOrderBy(sb *strings.Builder) {
	if len(b.orderBy) == 0 {
		return
	}
	keys := make([]string, len(b.orderBy))
	for i, field := range b.orderBy {
		keys[i] = field + " " + b.orderDir[field]
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(joinComma(keys))
}

func (b *Builder) writeLimit(sb *strings.Builder) {
	if !b.hasLimit {
		return
	}
	if b.hasOffset {
		fmt.Fprintf(sb, " LIMIT %d, %d", b.offset, b.limit)
		return
	}
	fmt.Fprintf(sb, " LIMIT %d", b.limit)
}

func normalizeDirection(direction string) (string, bool) {
	switch strings.ToUpper(direction) {
	case "ASC":
		return "ASC", true
	case "DESC":
		return "DESC", true
	}
	return "", false
}

func normalizeDeleteModifier(modifier string) (string, bool) {
	switch strings.ToUpper(modifier) {
	case "LOW_PRIORITY":
		return "LOW_PRIORITY", true
	case "QUICK":
		return "QUICK", true
	case "IGNORE":
		return "IGNORE", true
	}
	return "", false
}
