// Package query implements the thin SELECT/INSERT/CREATE TABLE front-end
// described in §6: it turns a parsed statement into btree/record calls
// and exposes the five core contracts (open, find, insert, scan,
// root_of) that the SQL surface is built on top of.
package query

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rowiddb/rowiddb/internal/btree"
	"github.com/rowiddb/rowiddb/internal/page"
	"github.com/rowiddb/rowiddb/internal/pager"
	"github.com/rowiddb/rowiddb/internal/record"
	"github.com/rowiddb/rowiddb/internal/schema"
	"github.com/rowiddb/rowiddb/internal/sql/parser"
)

var (
	// ErrDuplicateRowid surfaces btree.ErrDuplicateRowid at the query layer.
	ErrDuplicateRowid = errors.New("query: rowid already in database")
	// ErrTripleSplitUnsupported surfaces btree.ErrTripleSplit.
	ErrTripleSplitUnsupported = errors.New("query: split does not fit in two pages")
	ErrTableExists            = errors.New("query: table already exists")
	ErrNoSuchTable            = errors.New("query: no such table")
	ErrColumnCountMismatch    = errors.New("query: value count does not match column count")
	ErrTypeMismatch           = errors.New("query: literal type does not match column affinity")
)

// DB is an open database file: a pager, the table b-tree engine built on
// top of it, and the catalog discovered from the schema root.
type DB struct {
	pager   *pager.Pager
	tree    *btree.Tree
	catalog *schema.Catalog
}

// Create initialises a brand-new database file at path with the given
// page size, allocating page 1 as an empty schema-root leaf.
func Create(path string, pageSize int) (*DB, error) {
	p, err := pager.Create(path, pageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("query: create %s: %w", path, err)
	}

	buf1, err := p.ReadPage(1)
	if err != nil {
		return nil, err
	}
	root := page.InitFirst(buf1, pageSize, p.Usable(), page.TypeLeafTable)
	if err := p.WritePage(1, root.Buf); err != nil {
		return nil, err
	}

	tree := btree.New(p)
	cat, err := schema.Discover(tree)
	if err != nil {
		return nil, err
	}
	slog.Debug("query: created database", "path", path, "page_size", pageSize)
	return &DB{pager: p, tree: tree, catalog: cat}, nil
}

// Open implements the open(path) -> DB contract: it reads the file
// header and parses the schema.
func Open(path string) (*DB, error) {
	p, err := pager.Open(path)
	if err != nil {
		return nil, fmt.Errorf("query: open %s: %w", path, err)
	}
	tree := btree.New(p)
	cat, err := schema.Discover(tree)
	if err != nil {
		return nil, fmt.Errorf("query: discover schema: %w", err)
	}
	return &DB{pager: p, tree: tree, catalog: cat}, nil
}

func (db *DB) Close() error { return db.pager.Close() }

// Find implements the find(root, rowid, out_payload) contract.
func (db *DB) Find(root uint32, rowid int64) ([]byte, bool, error) {
	return db.tree.Find(root, rowid)
}

// Insert implements the insert(root, rowid, payload) contract, mapping
// btree-level errors onto the query-level taxonomy from §7.
func (db *DB) Insert(root uint32, rowid int64, payload []byte) error {
	err := db.tree.Insert(root, rowid, payload)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, btree.ErrDuplicateRowid):
		return ErrDuplicateRowid
	case errors.Is(err, btree.ErrTripleSplit):
		return ErrTripleSplitUnsupported
	default:
		return err
	}
}

// Scan implements the scan(root, visit) contract.
func (db *DB) Scan(root uint32) ([]btree.Cell, error) {
	return db.tree.Scan(root)
}

// RootOf implements the root_of(table_name) -> page_number contract.
func (db *DB) RootOf(name string) (uint32, error) {
	t, ok := db.catalog.Table(name)
	if !ok {
		return 0, ErrNoSuchTable
	}
	return t.RootPage, nil
}

// Result is the generic result of Exec: Columns is empty for
// DDL/DML, populated for SELECT.
type Result struct {
	Columns      []string
	Rows         [][]any
	AffectedRows int64
}

// Exec runs a single SQL statement and returns its result.
func (db *DB) Exec(sql string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return db.execCreateTable(s)
	case *parser.InsertStmt:
		return db.execInsert(s)
	case *parser.SelectStmt:
		return db.execSelect(s)
	default:
		return nil, fmt.Errorf("query: unsupported statement type %T", stmt)
	}
}

func (db *DB) execCreateTable(stmt *parser.CreateTableStmt) (*Result, error) {
	if _, ok := db.catalog.Table(stmt.Table); ok {
		return nil, ErrTableExists
	}

	leaf := page.New(db.pager.PageSize(), db.pager.Usable(), false, page.TypeLeafTable)
	rootNum, err := db.pager.AppendPage(leaf.Buf)
	if err != nil {
		return nil, err
	}

	sqlText := reconstructCreateTable(stmt)
	masterRowid, err := db.nextRowid(schema.SchemaRoot)
	if err != nil {
		return nil, err
	}
	masterPayload := schema.EncodeMasterRow(stmt.Table, rootNum, sqlText)
	if err := db.tree.Insert(schema.SchemaRoot, masterRowid, masterPayload); err != nil {
		return nil, fmt.Errorf("query: record new table in schema: %w", err)
	}

	cat, err := schema.Discover(db.tree)
	if err != nil {
		return nil, err
	}
	db.catalog = cat
	return &Result{}, nil
}

func (db *DB) execInsert(stmt *parser.InsertStmt) (*Result, error) {
	table, ok := db.catalog.Table(stmt.Table)
	if !ok {
		return nil, ErrNoSuchTable
	}
	if len(stmt.Values) != len(table.Columns) {
		return nil, ErrColumnCountMismatch
	}

	values := make([]record.Value, 0, len(table.Columns))
	var rowid int64
	haveRowidColumn := false
	for i, col := range table.Columns {
		lit := stmt.Values[i]
		if col.Rowid {
			if lit.IsText {
				return nil, ErrTypeMismatch
			}
			rowid = lit.Int
			haveRowidColumn = true
			values = append(values, record.RowidValue(lit.Int))
			continue
		}
		switch col.Affinity {
		case parser.ColumnInteger:
			if lit.IsText {
				return nil, ErrTypeMismatch
			}
			values = append(values, record.IntValue(lit.Int))
		case parser.ColumnText:
			if !lit.IsText {
				return nil, ErrTypeMismatch
			}
			values = append(values, record.TextValue(lit.Text))
		}
	}

	if !haveRowidColumn {
		next, err := db.nextRowid(table.RootPage)
		if err != nil {
			return nil, err
		}
		rowid = next
	}

	payload, _ := record.Encode(values)
	if err := db.Insert(table.RootPage, rowid, payload); err != nil {
		return nil, err
	}
	return &Result{AffectedRows: 1}, nil
}

func (db *DB) execSelect(stmt *parser.SelectStmt) (*Result, error) {
	table, ok := db.catalog.Table(stmt.Table)
	if !ok {
		return nil, ErrNoSuchTable
	}

	cols := stmt.Columns
	if cols == nil {
		cols = make([]string, len(table.Columns))
		for i, c := range table.Columns {
			cols[i] = c.Name
		}
	}
	colIdx := make([]int, len(cols))
	for i, name := range cols {
		idx, ok := table.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("query: no such column %q on table %q", name, stmt.Table)
		}
		colIdx[i] = idx
	}

	cells, err := db.tree.Scan(table.RootPage)
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols}
	for _, cell := range cells {
		header := cell.Payload[:record.HeaderLen(cell.Payload)]
		body := cell.Payload[record.HeaderLen(cell.Payload):]

		n, err := record.GetColumnCount(header)
		if err != nil {
			return nil, err
		}
		if n != len(table.Columns) {
			return nil, fmt.Errorf("query: row for table %q declares %d columns, schema has %d", stmt.Table, n, len(table.Columns))
		}

		if stmt.Where != nil {
			ok, err := evalWhere(stmt.Where, table, cell.Rowid, header, body)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		row := make([]any, len(colIdx))
		for i, idx := range colIdx {
			row[i], err = projectColumn(table, idx, cell.Rowid, header, body)
			if err != nil {
				return nil, err
			}
		}
		res.Rows = append(res.Rows, row)
	}
	res.AffectedRows = int64(len(res.Rows))
	return res, nil
}

func projectColumn(table *schema.Table, idx int, rowid int64, header, body []byte) (any, error) {
	if idx == 0 {
		return rowid, nil
	}
	col := table.Columns[idx-1]
	switch col.Affinity {
	case parser.ColumnInteger:
		return record.GetIntegerColumn(header, body, idx, rowid)
	default:
		return record.GetTextColumn(header, body, idx)
	}
}

// nextRowid picks the smallest rowid greater than every rowid currently
// stored at root, used whenever a table has no declared rowid-alias
// column.
func (db *DB) nextRowid(root uint32) (int64, error) {
	cells, err := db.tree.Scan(root)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, c := range cells {
		if c.Rowid > max {
			max = c.Rowid
		}
	}
	return max + 1, nil
}

// reconstructCreateTable re-renders a parsed CREATE TABLE statement back
// into SQL text, the form stored in the schema root and re-parsed on
// every subsequent Open/Discover.
func reconstructCreateTable(stmt *parser.CreateTableStmt) string {
	sql := "CREATE TABLE " + stmt.Table + " ("
	for i, c := range stmt.Columns {
		if i > 0 {
			sql += ", "
		}
		sql += c.Name + " " + c.Type.String()
	}
	sql += ")"
	return sql
}
