package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rowiddb/rowiddb/internal/btree"
	"github.com/rowiddb/rowiddb/internal/page"
	"github.com/rowiddb/rowiddb/internal/pager"
	"github.com/rowiddb/rowiddb/internal/record"
	"github.com/rowiddb/rowiddb/internal/sql/parser"
)

func newEmptyDB(t *testing.T) (*pager.Pager, *btree.Tree) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	p, err := pager.Create(path, 4096, 0)
	assert.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	buf1, err := p.ReadPage(1)
	assert.NoError(t, err)
	root := page.InitFirst(buf1, 4096, p.Usable(), page.TypeLeafTable)
	assert.NoError(t, p.WritePage(1, root.Buf))

	return p, btree.New(p)
}

func TestDiscoverEmptySchema(t *testing.T) {
	_, tree := newEmptyDB(t)
	cat, err := Discover(tree)
	assert.NoError(t, err)
	_, ok := cat.Table("t")
	assert.False(t, ok)
}

func TestDiscoverFindsTableAndColumns(t *testing.T) {
	p, tree := newEmptyDB(t)

	leaf := page.New(p.PageSize(), p.Usable(), false, page.TypeLeafTable)
	rootNum, err := p.AppendPage(leaf.Buf)
	assert.NoError(t, err)

	sql := "CREATE TABLE t (id INTEGER, name TEXT)"
	payload := EncodeMasterRow("t", rootNum, sql)
	assert.NoError(t, tree.Insert(SchemaRoot, 1, payload))

	cat, err := Discover(tree)
	assert.NoError(t, err)

	table, ok := cat.Table("t")
	assert.True(t, ok)
	assert.Equal(t, rootNum, table.RootPage)
	assert.Equal(t, []Column{
		{Name: "id", Affinity: parser.ColumnInteger, Rowid: true},
		{Name: "name", Affinity: parser.ColumnText, Rowid: false},
	}, table.Columns)

	idx, ok := table.ColumnIndex("id")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = table.ColumnIndex("name")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	root, err := cat.RootOf("t")
	assert.NoError(t, err)
	assert.Equal(t, rootNum, root)
}

func TestDiscoverSkipsNonTableRows(t *testing.T) {
	_, tree := newEmptyDB(t)

	indexPayload, _ := record.Encode([]record.Value{
		record.TextValue("index"),
		record.TextValue("idx_t_name"),
		record.TextValue("t"),
		record.IntValue(3),
		record.TextValue("CREATE INDEX idx_t_name ON t (name)"),
	})
	assert.NoError(t, tree.Insert(SchemaRoot, 1, indexPayload))

	cat, err := Discover(tree)
	assert.NoError(t, err)
	_, ok := cat.Table("idx_t_name")
	assert.False(t, ok)

	root, err := cat.RootOf("nonexistent")
	assert.Error(t, err)
	assert.Zero(t, root)
}
