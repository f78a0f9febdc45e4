// Package schema discovers the tables stored in a database by walking
// the root b-tree described in §4.6: page 1 holds one row per table,
// shaped like sqlite_master (type, name, tbl_name, rootpage, sql), and
// the CREATE TABLE text in column 5 is re-tokenised to recover column
// names and affinities in declaration order.
package schema

import (
	"fmt"

	"github.com/rowiddb/rowiddb/internal/btree"
	"github.com/rowiddb/rowiddb/internal/record"
	"github.com/rowiddb/rowiddb/internal/sql/parser"
)

// SchemaRoot is the fixed page number of the root b-tree that catalogues
// every table in the file.
const SchemaRoot uint32 = 1

// Column is one column of a discovered table, in declaration order.
type Column struct {
	Name     string
	Affinity parser.ColumnType
	Rowid    bool
}

// Table is one row of the schema catalogue, decoded and tokenised.
type Table struct {
	Name     string
	RootPage uint32
	SQL      string
	Columns  []Column
}

// ColumnIndex returns the 1-based record-column ordinal for name — 0
// marks the rowid-alias column, whose record slot is an empty serial-type-0
// entry and whose value comes from the cell's rowid. The alias still counts
// toward the ordinals of the columns after it.
// The second return value is false if no such column exists.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c.Name != name {
			continue
		}
		if c.Rowid {
			return 0, true
		}
		return i + 1, true
	}
	return 0, false
}

// Catalog is every table known to a database, keyed by name.
type Catalog struct {
	tables map[string]*Table
}

func newCatalog() *Catalog { return &Catalog{tables: make(map[string]*Table)} }

func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// RootOf resolves a table name to its root page number.
func (c *Catalog) RootOf(name string) (uint32, error) {
	t, ok := c.tables[name]
	if !ok {
		return 0, fmt.Errorf("schema: no such table %q", name)
	}
	return t.RootPage, nil
}

func (c *Catalog) put(t *Table) { c.tables[t.Name] = t }

// Discover walks the schema root via tree and builds a Catalog from every
// row whose type column is "table".
func Discover(tree *btree.Tree) (*Catalog, error) {
	cells, err := tree.Scan(SchemaRoot)
	if err != nil {
		return nil, fmt.Errorf("schema: scan root: %w", err)
	}

	cat := newCatalog()
	for _, cell := range cells {
		header := cell.Payload[:record.HeaderLen(cell.Payload)]
		body := cell.Payload[record.HeaderLen(cell.Payload):]

		kind, err := record.GetTextColumn(header, body, 1)
		if err != nil {
			return nil, fmt.Errorf("schema: row %d: read type column: %w", cell.Rowid, err)
		}
		if kind != "table" {
			continue
		}

		name, err := record.GetTextColumn(header, body, 2)
		if err != nil {
			return nil, fmt.Errorf("schema: row %d: read name column: %w", cell.Rowid, err)
		}
		rootPage, err := record.GetIntegerColumn(header, body, 4, cell.Rowid)
		if err != nil {
			return nil, fmt.Errorf("schema: row %d: read rootpage column: %w", cell.Rowid, err)
		}
		sqlText, err := record.GetTextColumn(header, body, 5)
		if err != nil {
			return nil, fmt.Errorf("schema: row %d: read sql column: %w", cell.Rowid, err)
		}

		cols, err := columnsFromCreateTable(sqlText)
		if err != nil {
			return nil, fmt.Errorf("schema: table %q: %w", name, err)
		}

		cat.put(&Table{Name: name, RootPage: uint32(rootPage), SQL: sqlText, Columns: cols})
	}
	return cat, nil
}

// columnsFromCreateTable tokenises and parses stmt's CREATE TABLE text
// with the SQL lexer/parser and returns its column list in declaration
// order.
func columnsFromCreateTable(sql string) ([]Column, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parse stored CREATE TABLE text: %w", err)
	}
	create, ok := stmt.(*parser.CreateTableStmt)
	if !ok {
		return nil, fmt.Errorf("stored schema text is not a CREATE TABLE statement")
	}

	cols := make([]Column, len(create.Columns))
	for i, c := range create.Columns {
		cols[i] = Column{Name: c.Name, Affinity: c.Type, Rowid: c.Rowid}
	}
	return cols, nil
}

// EncodeMasterRow builds the sqlite_master-equivalent payload for one
// table, as written to the schema root on CREATE TABLE.
func EncodeMasterRow(name string, rootPage uint32, sql string) []byte {
	payload, _ := record.Encode([]record.Value{
		record.TextValue("table"),
		record.TextValue(name),
		record.TextValue(name),
		record.IntValue(int64(rootPage)),
		record.TextValue(sql),
	})
	return payload
}
