package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectStar(t *testing.T) {
	sql, err := New().Table("table").Select().Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM table", sql)
}

func TestSelectDropsNonStringFields(t *testing.T) {
	sql, err := New().Table("table").Select("field", "another_field", 56).Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT field, another_field FROM table", sql)
}

func TestSelectAllNonStringFields(t *testing.T) {
	b := New().Table("table").Select(56, 3.14)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "none of them strings")
}

func TestSelectWhereOrWhereBetween(t *testing.T) {
	sql, err := New().
		Table("table").
		Select("field").
		Where("some_field", "ciaone").
		OrWhereClauses(
			Cmp("some_other_field", ">", 56),
			Cmp("some_beautiful_field", "between", []any{nil, 65}),
		).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT field FROM table WHERE some_field = '{esc}ciaone{esc}' OR some_other_field > 56 OR some_beautiful_field BETWEEN NULL AND 65",
		sql)
}

func TestInsertMultipleRows(t *testing.T) {
	sql, err := New().
		Table("table").
		Insert([]string{"field", "another_field"}, [][]any{
			{"ciaone", 56},
			{"ciaone2", "56b"},
		}).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO table (field, another_field) VALUES ('{esc}ciaone{esc}', 56), ('{esc}ciaone2{esc}', '{esc}56b{esc}')",
		sql)
}

func TestUpdateWithOrderAndLimit(t *testing.T) {
	sql, err := New().
		Update(map[string]any{"field": 56}).
		Table("table").
		OrderBy("field", "desc").
		Limit(15).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE table SET field = 56 ORDER BY field DESC LIMIT 15", sql)
}

func TestUpdateAssignmentsSortedByField(t *testing.T) {
	sql, err := New().
		Update(map[string]any{"b": 2, "a": 1, "c": "x"}).
		Table("t").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET a = 1, b = 2, c = '{esc}x{esc}'", sql)
}

func TestBuildIdempotent(t *testing.T) {
	b := New().Table("t").Select("a").Where("a", 1).OrderBy("a", "asc").Limit(3)
	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScalarAndClauseFormsEquivalent(t *testing.T) {
	scalar, err := New().Table("t").Select().Where("a", 1).Where("b", 2).Build()
	require.NoError(t, err)
	batch, err := New().Table("t").Select().WhereClauses(Cond("a", 1), Cond("b", 2)).Build()
	require.NoError(t, err)
	assert.Equal(t, scalar, batch)
}

func TestWhereTooManyElements(t *testing.T) {
	b := New().Table("t").Select().Where("field", "=", "ciaone", "extra")
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "4 elements")
}

func TestWhereBetweenWithoutRange(t *testing.T) {
	b := New().Table("t").Select().Where("field", "between", "ciaone")
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "2-element range")
}

func TestWhereArrayValueWithoutBetween(t *testing.T) {
	b := New().Table("t").Select().Where("field", "=", []any{1, 2})
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "BETWEEN")
}

func TestWhereNonStringOperator(t *testing.T) {
	b := New().Table("t").Select().Where("field", 7, "value")
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWhereInvalidOperator(t *testing.T) {
	b := New().Table("t").Select().Where("field", "=~", "value")
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"=~"`)
}

func TestWhereInAndNotIn(t *testing.T) {
	sql, err := New().Table("t").Select().
		WhereIn("a", []any{1, "x"}).
		WhereNotIn("b", []any{2}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a IN(1, '{esc}x{esc}') AND b NOT IN(2)", sql)
}

func TestWhereRawReplacesAccumulatedText(t *testing.T) {
	sql, err := New().Table("t").Select().
		Where("a", 1).
		WhereRaw("b = 2").
		OrWhere("c", 3).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE b = 2 OR c = 3", sql)
}

func TestJoins(t *testing.T) {
	sql, err := New().Table("t").Select("t.a").
		Join("u", "t.id", "=", "u.t_id").
		LeftJoin("v", "u.id", "!=", "v.u_id").
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t.a FROM t INNER JOIN u ON t.id = u.t_id LEFT JOIN v ON u.id != v.u_id",
		sql)
}

func TestJoinRejectsBetween(t *testing.T) {
	b := New().Table("t").Select().Join("u", "t.id", "between", "u.t_id")
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "join")
}

func TestGroupByHaving(t *testing.T) {
	sql, err := New().Table("t").Select("kind").Count().
		GroupBy("kind").
		Having("COUNT(*)", ">", 5).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT kind, COUNT(*) FROM t GROUP BY kind HAVING COUNT(*) > 5",
		sql)
}

func TestHavingWithoutGroupByNotRendered(t *testing.T) {
	sql, err := New().Table("t").Select().Having("a", ">", 1).Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t", sql)
}

func TestAggregates(t *testing.T) {
	sql, err := New().Table("t").
		Count().
		Max("a").
		Min("b").
		Sum("c").
		Avg("d").
		Round("e", 2).
		Greatest("f", "g").
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*), MAX(a), MIN(b), SUM(c), AVG(d), ROUND(e, 2), GREATEST(f, g) FROM t",
		sql)
}

func TestGreatestRequiresTwoFields(t *testing.T) {
	_, err := New().Table("t").Greatest("only").Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "at least 2")
}

func TestCountComposesWithSelect(t *testing.T) {
	sql, err := New().Table("t").Select("kind").Count("id").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT kind, COUNT(id) FROM t", sql)
}

func TestDistinct(t *testing.T) {
	sql, err := New().Table("t").Select("a").Distinct().Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT a FROM t", sql)
}

func TestOrderByAccumulatesAndOverwrites(t *testing.T) {
	sql, err := New().Table("t").Select().
		OrderBy("a", "asc").
		OrderBy("b", "desc").
		OrderBy("a", "desc").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t ORDER BY a DESC, b DESC", sql)
}

func TestOrderByInvalidDirection(t *testing.T) {
	_, err := New().Table("t").Select().OrderBy("a", "sideways").Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"sideways"`)
}

func TestLimitWithOffset(t *testing.T) {
	sql, err := New().Table("t").Select().Limit(10, 20).Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t LIMIT 20, 10", sql)
}

func TestFirst(t *testing.T) {
	sql, err := New().Table("t").Select().First().Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t LIMIT 0, 1", sql)
}

func TestNegativeLimit(t *testing.T) {
	_, err := New().Table("t").Select().Limit(-1).Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInsertRowLengthMismatch(t *testing.T) {
	b := New().Table("t").Insert([]string{"a", "b"}, [][]any{{1, 2}, {3}})
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "row 1 has 1 values, expected 2")
}

func TestInsertRowWidths(t *testing.T) {
	fields := []string{"a", "b", "c"}
	rows := [][]any{{1, 2, 3}, {"x", nil, true}}
	sql, err := New().Table("t").Insert(fields, rows).Build()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO t (a, b, c) VALUES (1, 2, 3), ('{esc}x{esc}', NULL, TRUE)",
		sql)
}

func TestDeleteWithModifier(t *testing.T) {
	sql, err := New().Table("t").Delete("ignore").Where("a", 1).Limit(5).Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE IGNORE FROM t WHERE a = 1 LIMIT 5", sql)
}

func TestDeletePlain(t *testing.T) {
	sql, err := New().Table("t").Delete().OrderBy("a", "asc").Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t ORDER BY a ASC", sql)
}

func TestDeleteInvalidModifier(t *testing.T) {
	_, err := New().Table("t").Delete("FAST").Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"FAST"`)
}

func TestBuildWithoutTable(t *testing.T) {
	_, err := New().Select("a").Build()
	require.ErrorIs(t, err, ErrLogic)
}

func TestBuildWithoutKind(t *testing.T) {
	_, err := New().Table("t").Build()
	require.ErrorIs(t, err, ErrLogic)
}

func TestConflictingKinds(t *testing.T) {
	b := New().Table("t").Select("a").Update(map[string]any{"a": 1})
	_, err := b.Build()
	require.ErrorIs(t, err, ErrLogic)
	assert.Contains(t, err.Error(), "already set")
}

func TestFirstErrorLatched(t *testing.T) {
	b := New().Table("t").Select().
		OrderBy("a", "bad").
		Limit(-5)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"bad"`)
}
