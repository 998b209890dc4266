// Package migrate applies SQL migration files in order and tracks them in
// a history table. It is a thin consumer of the query and schema builders:
// every statement it issues against the history table is rendered by them.
package migrate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/querycraft/querycraft/query"
	"github.com/querycraft/querycraft/runtime/client"
	"github.com/querycraft/querycraft/schema"
)

// HistoryTable is the bookkeeping table migrations are recorded in.
const HistoryTable = "_querycraft_migrations"

const timeFormat = "2006-01-02 15:04:05"

// Record is one applied migration as stored in the history table.
type Record struct {
	Name        string
	Checksum    string
	AppliedAt   string
	ExecutionMs int64
}

// Status describes one available migration and whether it has run.
type Status struct {
	Name      string
	Applied   bool
	AppliedAt string
}

// Runner discovers .sql migration files in a directory and applies the
// pending ones in lexical order.
type Runner struct {
	client *client.Client
	fs     afero.Fs
	dir    string
}

// NewRunner creates a runner over the given client and migration directory.
func NewRunner(c *client.Client, fs afero.Fs, dir string) *Runner {
	return &Runner{client: c, fs: fs, dir: dir}
}

// InitHistory creates the history table if it does not exist.
func (r *Runner) InitHistory(ctx context.Context) error {
	ddl, err := historyTable().Build()
	if err != nil {
		return fmt.Errorf("failed to render history table DDL: %w", err)
	}
	if _, err := r.client.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

func historyTable() *schema.Table {
	return schema.NewTable(HistoryTable,
		schema.NewField("id").Integer().Unsigned().NotNull().AutoIncrement(),
		schema.NewField("name").Varchar(255).NotNull(),
		schema.NewField("checksum").Char(64).NotNull(),
		schema.NewField("applied_at").DateTime().NotNull(),
		schema.NewField("execution_ms").BigInteger().NotNull(),
	).PrimaryKey("id")
}

// Available returns the migration names found in the directory, sorted.
func (r *Runner) Available() ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory %s: %w", r.dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".sql"))
	}
	sort.Strings(names)
	return names, nil
}

// Applied returns the history records, ordered by name.
func (r *Runner) Applied(ctx context.Context) ([]Record, error) {
	b, err := query.NewBuilder("mysql")
	if err != nil {
		return nil, err
	}
	sql, err := b.
		Table(HistoryTable).
		Select("name", "checksum", "applied_at", "execution_ms").
		OrderBy("name", "asc").
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to render history query: %w", err)
	}
	rows, err := r.client.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Checksum, &rec.AppliedAt, &rec.ExecutionMs); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Pending returns available migrations that have not been applied. A
// checksum mismatch on an already-applied migration is an error: the file
// changed after it ran.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	available, err := r.Available()
	if err != nil {
		return nil, err
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	appliedSums := make(map[string]string, len(applied))
	for _, rec := range applied {
		appliedSums[rec.Name] = rec.Checksum
	}
	var pending []string
	for _, name := range available {
		sum, ok := appliedSums[name]
		if !ok {
			pending = append(pending, name)
			continue
		}
		current, err := r.checksum(name)
		if err != nil {
			return nil, err
		}
		if current != sum {
			return nil, fmt.Errorf("migration %s was modified after being applied (checksum %s, recorded %s)", name, current, sum)
		}
	}
	return pending, nil
}

// Up applies all pending migrations in order and returns their names.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	if err := r.InitHistory(ctx); err != nil {
		return nil, err
	}
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range pending {
		if err := r.apply(ctx, name); err != nil {
			return nil, fmt.Errorf("migration %s failed: %w", name, err)
		}
	}
	return pending, nil
}

func (r *Runner) apply(ctx context.Context, name string) error {
	content, err := r.read(name)
	if err != nil {
		return err
	}
	start := time.Now()
	for _, statement := range splitStatements(content) {
		if _, err := r.client.Exec(ctx, statement); err != nil {
			return err
		}
	}
	elapsed := time.Since(start).Milliseconds()

	sum := checksum(content)
	b, err := query.NewBuilder("mysql")
	if err != nil {
		return err
	}
	insert, err := b.
		Table(HistoryTable).
		Insert(
			[]string{"name", "checksum", "applied_at", "execution_ms"},
			[][]any{{name, sum, time.Now().UTC().Format(timeFormat), elapsed}},
		).
		Build()
	if err != nil {
		return fmt.Errorf("failed to render history insert: %w", err)
	}
	if _, err := r.client.Exec(ctx, insert); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// Status reports every available migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	available, err := r.Available()
	if err != nil {
		return nil, err
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	appliedAt := make(map[string]string, len(applied))
	for _, rec := range applied {
		appliedAt[rec.Name] = rec.AppliedAt
	}
	statuses := make([]Status, 0, len(available))
	for _, name := range available {
		at, ok := appliedAt[name]
		statuses = append(statuses, Status{Name: name, Applied: ok, AppliedAt: at})
	}
	return statuses, nil
}

// Reset drops the history table, forgetting every applied migration. It
// does not undo the migrations themselves.
func (r *Runner) Reset(ctx context.Context) error {
	ddl, err := historyTable().Drop().Build()
	if err != nil {
		return fmt.Errorf("failed to render history drop: %w", err)
	}
	if _, err := r.client.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to drop history table: %w", err)
	}
	return nil
}

func (r *Runner) read(name string) (string, error) {
	path := filepath.Join(r.dir, name+".sql")
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read migration %s: %w", path, err)
	}
	return string(data), nil
}

func (r *Runner) checksum(name string) (string, error) {
	content, err := r.read(name)
	if err != nil {
		return "", err
	}
	return checksum(content), nil
}

func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// splitStatements splits a migration file on semicolons, dropping blank
// chunks and line comments. Semicolons inside string literals are not
// handled; migration files are expected to keep one statement per chunk.
func splitStatements(content string) []string {
	var statements []string
	for _, chunk := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, trimmed)
		}
		if len(lines) == 0 {
			continue
		}
		statements = append(statements, strings.Join(lines, "\n"))
	}
	return statements
}
