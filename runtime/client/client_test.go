package client

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querycraft/querycraft/query/builder"
)

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"it's", `it\'s`},
		{`back\slash`, `back\\slash`},
		{"line\nbreak", `line\nbreak`},
		{"cr\rhere", `cr\rhere`},
		{`say "hi"`, `say \"hi\"`},
		{"nul\x00byte", `nul\0byte`},
		{"ctrlz\x1a", `ctrlz\Z`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeString(tt.in))
	}
}

func TestPrepareResolvesMarkers(t *testing.T) {
	sql, err := builder.New().Table("t").Select().Where("a", "it's").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = '{esc}it's{esc}'", sql)
	assert.Equal(t, `SELECT * FROM t WHERE a = 'it\'s'`, Prepare(sql))
}

func TestExecEscapesBeforeExecution(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sql, err := builder.New().
		Table("users").
		Insert([]string{"name"}, [][]any{{"O'Brien"}}).
		Build()
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO users \(name\) VALUES \('O\\'Brien'\)`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c := New(db)
	_, err = c.Exec(context.Background(), sql)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryPassesThroughPlainText(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT \\* FROM users LIMIT 5").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	c := New(db)
	rows, err := c.Query(context.Background(), "SELECT * FROM users LIMIT 5")
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	require.NoError(t, mock.ExpectationsWereMet())
}
