package migrate

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querycraft/querycraft/runtime/client"
)

const historyDDL = "CREATE TABLE IF NOT EXISTS _querycraft_migrations (" +
	"id INT(11) NOT NULL UNSIGNED AUTO_INCREMENT, " +
	"name VARCHAR(255) NOT NULL, " +
	"checksum CHAR(64) NOT NULL, " +
	"applied_at DATETIME NOT NULL, " +
	"execution_ms BIGINT(20) NOT NULL, " +
	"PRIMARY KEY (id)) " +
	"CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci ENGINE=InnoDB;"

const historySelect = "SELECT name, checksum, applied_at, execution_ms " +
	"FROM _querycraft_migrations ORDER BY name ASC"

func newRunner(t *testing.T, files map[string]string) (*Runner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("migrations", 0o755))
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, "migrations/"+name, []byte(content), 0o644))
	}
	return NewRunner(client.New(db), fs, "migrations"), mock
}

func emptyHistory() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"name", "checksum", "applied_at", "execution_ms"})
}

func TestHistoryTableDDL(t *testing.T) {
	ddl, err := historyTable().Build()
	require.NoError(t, err)
	assert.Equal(t, historyDDL, ddl)
}

func TestAvailableSortsAndFilters(t *testing.T) {
	r, _ := newRunner(t, map[string]string{
		"002_second.sql": "SELECT 1;",
		"001_first.sql":  "SELECT 1;",
		"notes.txt":      "not a migration",
	})
	names, err := r.Available()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first", "002_second"}, names)
}

func TestUpAppliesPendingInOrder(t *testing.T) {
	r, mock := newRunner(t, map[string]string{
		"001_init.sql": "CREATE TABLE users (id INT);\n",
		"002_data.sql": "-- seed\nINSERT INTO users (id) VALUES (1);\nINSERT INTO users (id) VALUES (2);\n",
	})

	mock.ExpectExec(regexp.QuoteMeta(historyDDL)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(historySelect)).
		WillReturnRows(emptyHistory())

	recordInsert := `INSERT INTO _querycraft_migrations \(name, checksum, applied_at, execution_ms\) ` +
		`VALUES \('[0-9a-z_]+', '[0-9a-f]{64}', '[0-9: -]+', \d+\)`

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE users (id INT)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(recordInsert).WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id) VALUES (1)")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id) VALUES (2)")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(recordInsert).WillReturnResult(sqlmock.NewResult(2, 1))

	applied, err := r.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init", "002_data"}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpSkipsApplied(t *testing.T) {
	content := "CREATE TABLE users (id INT);\n"
	r, mock := newRunner(t, map[string]string{"001_init.sql": content})

	mock.ExpectExec(regexp.QuoteMeta(historyDDL)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(historySelect)).
		WillReturnRows(emptyHistory().
			AddRow("001_init", checksum(content), "2026-01-01 00:00:00", 4))

	applied, err := r.Up(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingDetectsModifiedMigration(t *testing.T) {
	r, mock := newRunner(t, map[string]string{"001_init.sql": "SELECT 2;"})

	mock.ExpectQuery(regexp.QuoteMeta(historySelect)).
		WillReturnRows(emptyHistory().
			AddRow("001_init", checksum("SELECT 1;"), "2026-01-01 00:00:00", 4))

	_, err := r.Pending(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modified after being applied")
}

func TestStatus(t *testing.T) {
	r, mock := newRunner(t, map[string]string{
		"001_init.sql": "SELECT 1;",
		"002_more.sql": "SELECT 2;",
	})

	mock.ExpectQuery(regexp.QuoteMeta(historySelect)).
		WillReturnRows(emptyHistory().
			AddRow("001_init", checksum("SELECT 1;"), "2026-01-01 00:00:00", 4))

	statuses, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Status{
		{Name: "001_init", Applied: true, AppliedAt: "2026-01-01 00:00:00"},
		{Name: "002_more", Applied: false},
	}, statuses)
}

func TestReset(t *testing.T) {
	r, mock := newRunner(t, nil)
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS _querycraft_migrations;")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, r.Reset(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements("-- comment\nCREATE TABLE t (a INT);\n\nINSERT INTO t (a) VALUES (1);\n")
	assert.Equal(t, []string{
		"CREATE TABLE t (a INT)",
		"INSERT INTO t (a) VALUES (1)",
	}, statements)
}
