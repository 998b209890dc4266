// Package client executes rendered queries against a live MySQL
// connection. It owns the execution-boundary half of the escape-marker
// contract: every marked span in a rendered query is driver-escaped here,
// immediately before execution.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/querycraft/querycraft/query/sqlgen"
)

// Client wraps a database handle and resolves escape markers on every
// statement it runs.
type Client struct {
	db *sql.DB
}

// Open connects to MySQL with the given DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*Client, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &Client{db: db}, nil
}

// New wraps an existing database handle. The caller keeps ownership of db.
func New(db *sql.DB) *Client {
	return &Client{db: db}
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Exec resolves escape markers in query and executes it.
func (c *Client) Exec(ctx context.Context, query string) (sql.Result, error) {
	return c.db.ExecContext(ctx, Prepare(query))
}

// Query resolves escape markers in query and runs it, returning rows.
func (c *Client) Query(ctx context.Context, query string) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, Prepare(query))
}

// Prepare rewrites a rendered query into executable text by escaping every
// marked literal span.
func Prepare(query string) string {
	return sqlgen.ResolveMarkers(query, EscapeString)
}

// EscapeString escapes a string for interpolation into a single-quoted
// MySQL literal. The character set matches the server's mysql_real_escape_string
// treatment of NUL, newline, carriage return, backslash, quotes and Ctrl-Z.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case 0x1a:
			b.WriteString(`\Z`)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
