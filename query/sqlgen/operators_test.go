package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOperator(t *testing.T) {
	tests := []struct {
		op    string
		ctx   OperatorContext
		valid bool
	}{
		{"=", OperatorContextJoin, true},
		{">", OperatorContextJoin, true},
		{">=", OperatorContextJoin, true},
		{"<", OperatorContextJoin, true},
		{"<=", OperatorContextJoin, true},
		{"!=", OperatorContextJoin, true},
		{"LIKE", OperatorContextJoin, true},
		{"like", OperatorContextJoin, true},
		{"BETWEEN", OperatorContextJoin, false},
		{"BETWEEN", OperatorContextWhere, true},
		{"between", OperatorContextWhere, true},
		{"=", OperatorContextWhere, true},
		{"==", OperatorContextWhere, false},
		{"<>", OperatorContextWhere, false},
		{"", OperatorContextWhere, false},
		{"IN", OperatorContextWhere, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidOperator(tt.op, tt.ctx), "operator %q ctx %v", tt.op, tt.ctx)
	}
}
