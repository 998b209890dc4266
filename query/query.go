// Package query exposes dialect-qualified construction of query builders,
// so callers such as the migration runner can obtain a builder from a
// provider string without dialect-specific knowledge.
package query

import (
	"fmt"

	"github.com/querycraft/querycraft/query/builder"
)

// NewBuilder returns a fresh query builder for the named dialect.
// MySQL is the only supported target.
func NewBuilder(dialect string) (*builder.Builder, error) {
	switch dialect {
	case "mysql":
		return builder.New(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
}
