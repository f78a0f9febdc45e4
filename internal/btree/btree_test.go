package btree

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rowiddb/rowiddb/internal/page"
	"github.com/rowiddb/rowiddb/internal/pager"
	"github.com/rowiddb/rowiddb/internal/record"
)

// newTableRoot creates a fresh database and appends a single empty leaf
// page to serve as a table's root, mirroring the spec's worked examples
// where a table's root page is allocated once at CREATE TABLE time.
func newTableRoot(t *testing.T, pageSize int) (*pager.Pager, uint32) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	p, err := pager.Create(path, pageSize, 0)
	assert.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	leaf := page.New(pageSize, p.Usable(), false, page.TypeLeafTable)
	root, err := p.AppendPage(leaf.Buf)
	assert.NoError(t, err)
	return p, root
}

func encodeRow(id int64, name string) []byte {
	payload, _ := record.Encode([]record.Value{record.RowidValue(id), record.TextValue(name)})
	return payload
}

func TestInsertAndFindNoSplit(t *testing.T) {
	p, root := newTableRoot(t, 4096)
	tree := New(p)

	payload := encodeRow(1, "alice")
	assert.NoError(t, tree.Insert(root, 1, payload))
	assert.Equal(t, 2, p.PageCount())

	got, found, err := tree.Find(root, 1)
	assert.NoError(t, err)
	assert.True(t, found)

	header := got[:record.HeaderLen(got)]
	body := got[record.HeaderLen(got):]
	name, err := record.GetTextColumn(header, body, 2)
	assert.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestInsertDuplicateRowidRejected(t *testing.T) {
	p, root := newTableRoot(t, 4096)
	tree := New(p)

	assert.NoError(t, tree.Insert(root, 1, encodeRow(1, "alice")))
	err := tree.Insert(root, 1, encodeRow(1, "bob"))
	assert.ErrorIs(t, err, ErrDuplicateRowid)
}

func TestFindMissingRowidNotFound(t *testing.T) {
	p, root := newTableRoot(t, 4096)
	tree := New(p)

	assert.NoError(t, tree.Insert(root, 1, encodeRow(1, "alice")))
	_, found, err := tree.Find(root, 99)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestInsertCausesLeafSplitWithRootPromotion(t *testing.T) {
	p, root := newTableRoot(t, 512)
	tree := New(p)

	longText := make([]byte, 200)
	for i := range longText {
		longText[i] = byte('a' + i%26)
	}

	for id := int64(1); id <= 30; id++ {
		payload, _ := record.Encode([]record.Value{record.RowidValue(id), record.TextValue(string(longText))})
		assert.NoError(t, tree.Insert(root, id, payload))
	}

	rootPage, err := tree.loadPage(root)
	assert.NoError(t, err)
	assert.True(t, rootPage.Type().IsInterior(), "root should have been promoted to an interior page")

	for id := int64(1); id <= 30; id++ {
		_, found, err := tree.Find(root, id)
		assert.NoError(t, err)
		assert.True(t, found, "rowid %d should be found after splits", id)
	}
}

func TestScanReturnsAscendingRowids(t *testing.T) {
	p, root := newTableRoot(t, 512)
	tree := New(p)

	longText := make([]byte, 200)
	for i := range longText {
		longText[i] = byte('a' + i%26)
	}
	for id := int64(1); id <= 30; id++ {
		payload, _ := record.Encode([]record.Value{record.RowidValue(id), record.TextValue(string(longText))})
		assert.NoError(t, tree.Insert(root, id, payload))
	}

	cells, err := tree.Scan(root)
	assert.NoError(t, err)
	assert.Len(t, cells, 30)
	for i, c := range cells {
		assert.Equal(t, int64(i+1), c.Rowid)
	}
}

func TestOverflowChainRoundTrip(t *testing.T) {
	p, root := newTableRoot(t, 512)
	tree := New(p)

	bigText := make([]byte, 4000)
	for i := range bigText {
		bigText[i] = byte(i)
	}
	payload, _ := record.Encode([]record.Value{record.RowidValue(1), record.BlobValue(bigText)})
	assert.NoError(t, tree.Insert(root, 1, payload))

	got, found, err := tree.Find(root, 1)
	assert.NoError(t, err)
	assert.True(t, found)

	header := got[:record.HeaderLen(got)]
	body := got[record.HeaderLen(got):]
	blob, err := record.GetBlobColumn(header, body, 2)
	assert.NoError(t, err)
	assert.Equal(t, bigText, blob)
}

func TestInsertManyRowsAcrossMultipleSplits(t *testing.T) {
	p, root := newTableRoot(t, 512)
	tree := New(p)

	for id := int64(1); id <= 300; id++ {
		payload := encodeRow(id, fmt.Sprintf("row-%d", id))
		assert.NoError(t, tree.Insert(root, id, payload))
	}

	for id := int64(1); id <= 300; id++ {
		got, found, err := tree.Find(root, id)
		assert.NoError(t, err)
		assert.True(t, found)
		header := got[:record.HeaderLen(got)]
		body := got[record.HeaderLen(got):]
		name, err := record.GetTextColumn(header, body, 2)
		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("row-%d", id), name)
	}
}
