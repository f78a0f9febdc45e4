// Package parser turns the SQL surface described in §6 into a small AST:
// CREATE TABLE, INSERT INTO ... VALUES, and SELECT with an optional WHERE
// clause over INTEGER columns. It is a straight recursive-descent parser
// over the token stream produced by internal/sql/lexer, in the spirit of
// the engine's other hand-rolled front-ends rather than a grammar-driven
// generator.
package parser

import (
	"fmt"

	"github.com/rowiddb/rowiddb/internal/sql/lexer"
)

// Parser consumes a fixed token slice with one token of lookahead.
type Parser struct {
	toks []lexer.Token
	pos  int
}

func New(sql string) *Parser {
	return &Parser{toks: lexer.Tokens(sql)}
}

// Parse parses one statement from sql.
func Parse(sql string) (Statement, error) {
	p := New(sql)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.cur().Tag != lexer.EOF {
		return nil, fmt.Errorf("sql: unexpected trailing input at token %v", p.cur())
	}
	return stmt, nil
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tag lexer.Tag, what string) (lexer.Token, error) {
	if p.cur().Tag != tag {
		return lexer.Token{}, fmt.Errorf("sql: expected %s, got token %v", what, p.cur())
	}
	return p.advance(), nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.cur().Tag {
	case lexer.CREATE:
		return p.parseCreateTable()
	case lexer.INSERT:
		return p.parseInsert()
	case lexer.SELECT:
		return p.parseSelect()
	default:
		return nil, fmt.Errorf("sql: unrecognised statement starting at token %v", p.cur())
	}
}

func (p *Parser) parseIdent() (string, error) {
	tok, err := p.expect(lexer.Ident, "identifier")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// parseCreateTable parses `CREATE TABLE <name> (<col> <type>, ...)`.
func (p *Parser) parseCreateTable() (Statement, error) {
	p.advance() // CREATE
	if _, err := p.expect(lexer.TABLE, "TABLE"); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LeftParen, "("); err != nil {
		return nil, err
	}

	var cols []ColumnDef
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		colType, err := p.parseColumnType()
		if err != nil {
			return nil, err
		}
		cols = append(cols, ColumnDef{Name: name, Type: colType, Rowid: name == "id"})

		if p.cur().Tag == lexer.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RightParen, ")"); err != nil {
		return nil, err
	}
	return &CreateTableStmt{Table: table, Columns: cols}, nil
}

func (p *Parser) parseColumnType() (ColumnType, error) {
	switch p.cur().Tag {
	case lexer.TypeText, lexer.TypeBlob:
		p.advance()
		return ColumnText, nil
	case lexer.TypeInteger, lexer.TypeNumeric, lexer.TypeReal:
		p.advance()
		return ColumnInteger, nil
	default:
		return 0, fmt.Errorf("sql: expected a column type, got token %v", p.cur())
	}
}

// parseInsert parses `INSERT INTO <name> VALUES (<literal>, ...)`.
func (p *Parser) parseInsert() (Statement, error) {
	p.advance() // INSERT
	if _, err := p.expect(lexer.INTO, "INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.VALUES, "VALUES"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LeftParen, "("); err != nil {
		return nil, err
	}

	var values []Literal
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)

		if p.cur().Tag == lexer.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RightParen, ")"); err != nil {
		return nil, err
	}
	return &InsertStmt{Table: table, Values: values}, nil
}

func (p *Parser) parseLiteral() (Literal, error) {
	neg := false
	if p.cur().Tag == lexer.Minus {
		p.advance()
		neg = true
	}
	switch p.cur().Tag {
	case lexer.IntegerLiteral:
		tok := p.advance()
		v := tok.Int
		if neg {
			v = -v
		}
		return Literal{Int: v}, nil
	case lexer.StringLiteral:
		if neg {
			return Literal{}, fmt.Errorf("sql: unexpected '-' before string literal")
		}
		tok := p.advance()
		return Literal{IsText: true, Text: tok.Text}, nil
	default:
		return Literal{}, fmt.Errorf("sql: expected a literal value, got token %v", p.cur())
	}
}

// parseSelect parses `SELECT * FROM <name>` or `SELECT <col>, ... FROM
// <name>`, with an optional WHERE clause.
func (p *Parser) parseSelect() (Statement, error) {
	p.advance() // SELECT

	var cols []string
	if p.cur().Tag == lexer.Star {
		p.advance()
	} else {
		for {
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			cols = append(cols, name)
			if p.cur().Tag == lexer.Comma {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(lexer.FROM, "FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	stmt := &SelectStmt{Table: table, Columns: cols}
	if p.cur().Tag == lexer.WHERE {
		p.advance()
		where, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// parseOr / parseAnd / parseUnary / parseComparison / parseOperand
// implement the usual OR-lowest, AND-next, comparison-tightest
// precedence. Parentheses group boolean sub-expressions in parseUnary;
// comparison operands (parseOperand) are always a bare column or integer
// literal.
func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Tag == lexer.OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: lexer.OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Tag == lexer.AND {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: lexer.AND, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.cur().Tag == lexer.LeftParen {
		p.advance()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RightParen, ")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	switch p.cur().Tag {
	case lexer.Equal, lexer.NotEqual, lexer.Less, lexer.LessOrEqual, lexer.Greater, lexer.GreaterOrEqual:
		op := p.advance().Tag
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("sql: expected a comparison operator, got token %v", p.cur())
	}
}

func (p *Parser) parseOperand() (Expr, error) {
	neg := false
	if p.cur().Tag == lexer.Minus {
		p.advance()
		neg = true
	}
	switch p.cur().Tag {
	case lexer.IntegerLiteral:
		tok := p.advance()
		v := tok.Int
		if neg {
			v = -v
		}
		return &IntLiteral{Value: v}, nil
	case lexer.Ident:
		if neg {
			return nil, fmt.Errorf("sql: unexpected '-' before column reference")
		}
		tok := p.advance()
		return &ColumnRef{Name: tok.Text}, nil
	default:
		return nil, fmt.Errorf("sql: expected a column or integer literal, got token %v", p.cur())
	}
}
