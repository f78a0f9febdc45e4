package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rowiddb/rowiddb/internal/sql/lexer"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE t (id INTEGER, name TEXT)")
	assert.NoError(t, err)

	create, ok := stmt.(*CreateTableStmt)
	assert.True(t, ok)
	assert.Equal(t, "t", create.Table)
	assert.Equal(t, []ColumnDef{
		{Name: "id", Type: ColumnInteger, Rowid: true},
		{Name: "name", Type: ColumnText, Rowid: false},
	}, create.Columns)
}

func TestParseInsert(t *testing.T) {
	stmt, err := Parse("INSERT INTO t VALUES (1, 'alice')")
	assert.NoError(t, err)

	insert, ok := stmt.(*InsertStmt)
	assert.True(t, ok)
	assert.Equal(t, "t", insert.Table)
	assert.Equal(t, []Literal{
		{Int: 1},
		{IsText: true, Text: "alice"},
	}, insert.Values)
}

func TestParseSelectStar(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t")
	assert.NoError(t, err)

	sel, ok := stmt.(*SelectStmt)
	assert.True(t, ok)
	assert.Equal(t, "t", sel.Table)
	assert.Nil(t, sel.Columns)
	assert.Nil(t, sel.Where)
}

func TestParseSelectColumnsWithWhere(t *testing.T) {
	stmt, err := Parse("SELECT name FROM t WHERE n >= 10 AND n < 18")
	assert.NoError(t, err)

	sel, ok := stmt.(*SelectStmt)
	assert.True(t, ok)
	assert.Equal(t, []string{"name"}, sel.Columns)

	where, ok := sel.Where.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, lexer.AND, where.Op)

	left, ok := where.Left.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, lexer.GreaterOrEqual, left.Op)
	assert.Equal(t, &ColumnRef{Name: "n"}, left.Left)
	assert.Equal(t, &IntLiteral{Value: 10}, left.Right)
}

func TestParseWhereWithParensAndOr(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE (a = 1 OR b = 2) AND c != 3")
	assert.NoError(t, err)

	sel := stmt.(*SelectStmt)
	top, ok := sel.Where.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, lexer.AND, top.Op)

	inner, ok := top.Left.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, lexer.OR, inner.Op)
}

func TestParseInsertNegativeLiteral(t *testing.T) {
	stmt, err := Parse("INSERT INTO t VALUES (-5, 'alice')")
	assert.NoError(t, err)

	insert, ok := stmt.(*InsertStmt)
	assert.True(t, ok)
	assert.Equal(t, []Literal{
		{Int: -5},
		{IsText: true, Text: "alice"},
	}, insert.Values)
}

func TestParseWhereNegativeOperand(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE n >= -10 AND n < 0")
	assert.NoError(t, err)

	sel := stmt.(*SelectStmt)
	where, ok := sel.Where.(*BinaryExpr)
	assert.True(t, ok)

	left, ok := where.Left.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, &IntLiteral{Value: -10}, left.Right)

	right, ok := where.Right.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, &IntLiteral{Value: 0}, right.Right)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := Parse("SELECT * FROM t EXTRA")
	assert.Error(t, err)
}

func TestParseRejectsUnknownStatement(t *testing.T) {
	_, err := Parse("DROP TABLE t")
	assert.Error(t, err)
}
