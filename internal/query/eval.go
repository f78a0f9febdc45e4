package query

import (
	"fmt"

	"github.com/rowiddb/rowiddb/internal/record"
	"github.com/rowiddb/rowiddb/internal/schema"
	"github.com/rowiddb/rowiddb/internal/sql/lexer"
	"github.com/rowiddb/rowiddb/internal/sql/parser"
)

// evalWhere evaluates a WHERE expression against one row. Per the
// non-goal in §1, only INTEGER columns participate: every comparison
// resolves both sides to an int64 via resolveOperand before comparing.
func evalWhere(e parser.Expr, table *schema.Table, rowid int64, header, body []byte) (bool, error) {
	switch v := e.(type) {
	case *parser.BinaryExpr:
		switch v.Op {
		case lexer.AND:
			l, err := evalWhere(v.Left, table, rowid, header, body)
			if err != nil || !l {
				return false, err
			}
			return evalWhere(v.Right, table, rowid, header, body)
		case lexer.OR:
			l, err := evalWhere(v.Left, table, rowid, header, body)
			if err != nil {
				return false, err
			}
			if l {
				return true, nil
			}
			return evalWhere(v.Right, table, rowid, header, body)
		default:
			left, err := resolveOperand(v.Left, table, rowid, header, body)
			if err != nil {
				return false, err
			}
			right, err := resolveOperand(v.Right, table, rowid, header, body)
			if err != nil {
				return false, err
			}
			return compare(v.Op, left, right), nil
		}
	default:
		return false, fmt.Errorf("query: malformed WHERE expression node %T", e)
	}
}

func resolveOperand(e parser.Expr, table *schema.Table, rowid int64, header, body []byte) (int64, error) {
	switch v := e.(type) {
	case *parser.IntLiteral:
		return v.Value, nil
	case *parser.ColumnRef:
		idx, ok := table.ColumnIndex(v.Name)
		if !ok {
			return 0, fmt.Errorf("query: no such column %q in WHERE clause", v.Name)
		}
		if idx > 0 && table.Columns[idx-1].Affinity != parser.ColumnInteger {
			return 0, ErrTypeMismatch
		}
		return record.GetIntegerColumn(header, body, idx, rowid)
	default:
		return 0, fmt.Errorf("query: WHERE operand must be a column or integer literal, got %T", e)
	}
}

func compare(op lexer.Tag, l, r int64) bool {
	switch op {
	case lexer.Equal:
		return l == r
	case lexer.NotEqual:
		return l != r
	case lexer.Less:
		return l < r
	case lexer.LessOrEqual:
		return l <= r
	case lexer.Greater:
		return l > r
	case lexer.GreaterOrEqual:
		return l >= r
	default:
		return false
	}
}
