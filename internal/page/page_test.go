package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testPageSize = 512

type fakeAllocator struct {
	pages [][]byte
}

func (f *fakeAllocator) PageSize() int { return testPageSize }
func (f *fakeAllocator) Usable() int   { return testPageSize }

func (f *fakeAllocator) AppendPage(data []byte) (uint32, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	f.pages = append(f.pages, buf)
	return uint32(len(f.pages)), nil
}

func (f *fakeAllocator) readPage(n uint32) ([]byte, error) {
	return f.pages[n-1], nil
}

func TestLeafCellInsertAndInvariants(t *testing.T) {
	p := New(testPageSize, testPageSize, false, TypeLeafTable)
	alloc := &fakeAllocator{}

	payloads := [][]byte{
		[]byte("hello"),
		[]byte("world, a longer payload string"),
		[]byte("z"),
	}
	rowids := []int64{10, 20, 30}

	for i, payload := range payloads {
		slot := p.LowerBound(rowids[i])
		err := p.InsertLeafCell(rowids[i], slot, payload, alloc)
		assert.NoError(t, err)
	}

	h := p.ReadHeader()
	assert.Equal(t, uint16(3), h.CellCount)
	assert.GreaterOrEqual(t, int(h.StartOfCellContentArea), p.HeaderSize()+2*int(h.CellCount))

	lastRowid := int64(-1)
	for i := 0; i < int(h.CellCount); i++ {
		off := p.CellOffset(i)
		rowid := p.Rowid(off)
		assert.Greater(t, rowid, lastRowid)
		lastRowid = rowid
	}

	for i, payload := range payloads {
		off := p.CellOffset(i)
		got, rowid, err := p.AssembleLeafPayload(off, alloc.readPage)
		assert.NoError(t, err)
		assert.Equal(t, rowids[i], rowid)
		assert.Equal(t, payload, got)
	}
}

func TestLeafCellSpillsToOverflow(t *testing.T) {
	p := New(testPageSize, testPageSize, false, TypeLeafTable)
	alloc := &fakeAllocator{}

	big := make([]byte, 2000)
	for i := range big {
		big[i] = byte(i)
	}

	err := p.InsertLeafCell(1, 0, big, alloc)
	assert.NoError(t, err)
	assert.NotEmpty(t, alloc.pages)

	off := p.CellOffset(0)
	got, rowid, err := p.AssembleLeafPayload(off, alloc.readPage)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rowid)
	assert.Equal(t, big, got)
}

func TestInsertLeafCellNotEnoughSpace(t *testing.T) {
	p := New(testPageSize, testPageSize, false, TypeLeafTable)
	alloc := &fakeAllocator{}

	rowid := int64(1)
	var lastErr error
	for lastErr == nil {
		payload := make([]byte, 40)
		lastErr = p.InsertLeafCell(rowid, int(p.ReadHeader().CellCount), payload, alloc)
		rowid++
	}
	assert.ErrorIs(t, lastErr, ErrNotEnoughSpace)
}

func TestInteriorCellInsert(t *testing.T) {
	p := New(testPageSize, testPageSize, false, TypeInteriorTable)

	err := p.InsertInteriorCell(100, 0, 2)
	assert.NoError(t, err)
	err = p.InsertInteriorCell(200, 1, 3)
	assert.NoError(t, err)

	h := p.ReadHeader()
	assert.Equal(t, uint16(2), h.CellCount)

	off0 := p.CellOffset(0)
	off1 := p.CellOffset(1)
	assert.Equal(t, uint32(2), p.LeftChild(off0))
	assert.Equal(t, int64(100), p.Rowid(off0))
	assert.Equal(t, uint32(3), p.LeftChild(off1))
	assert.Equal(t, int64(200), p.Rowid(off1))
}

func TestPage1HeaderOffset(t *testing.T) {
	p := New(testPageSize, testPageSize, true, TypeLeafTable)
	assert.Equal(t, Page1HeaderOffset+baseHeaderSizeLeaf, p.HeaderSize())

	err := p.InsertLeafCell(1, 0, []byte("abc"), &fakeAllocator{})
	assert.NoError(t, err)
	h := p.ReadHeader()
	assert.GreaterOrEqual(t, int(h.StartOfCellContentArea), p.HeaderSize()+2*int(h.CellCount))
}

func TestSplitIndexBalancesBytes(t *testing.T) {
	sizes := []int{10, 10, 10, 10, 10}
	idx := SplitIndex(sizes)
	assert.True(t, idx > 0 && idx < len(sizes))

	left, right := 0, 0
	for i, sz := range sizes {
		if i < idx {
			left += sz
		} else {
			right += sz
		}
	}
	assert.InDelta(t, left, right, 10)
}

func TestCheckSplitFits(t *testing.T) {
	sizes := []int{100, 100, 100}
	ok := CheckSplitFits(512, 8, sizes, 1)
	assert.True(t, ok)

	tooBig := []int{400, 400, 400}
	ok = CheckSplitFits(512, 8, tooBig, 1)
	assert.False(t, ok)
}

func TestMinMaxPayloadTableLeaf(t *testing.T) {
	p := New(testPageSize, testPageSize, false, TypeLeafTable)
	x := p.MaxPayload()
	assert.Equal(t, testPageSize-35, x)
	assert.Less(t, p.MinPayload(), x)
}
