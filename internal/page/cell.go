package page

import (
	"github.com/rowiddb/rowiddb/internal/alias/bx"
	"github.com/rowiddb/rowiddb/internal/codec"
)

// MinPayload (M) and MaxPayload (X) bound how much of a payload is stored
// directly in a cell versus spilled to an overflow chain, per §4.3.
// Integer arithmetic throughout, matching the on-disk format's rule.
func (p *Page) MinPayload() int { return ((p.Usable-12)*32)/255 - 23 }

func (p *Page) MaxPayload() int {
	if p.Type().IsTable() {
		return p.Usable - 35
	}
	return ((p.Usable-12)*64)/255 - 23
}

// DirectlyStored computes K, the number of payload bytes stored in the
// cell itself (the rest spills to an overflow chain).
func (p *Page) DirectlyStored(pSize int) int {
	m := p.MinPayload()
	x := p.MaxPayload()
	if pSize <= x {
		return pSize
	}
	k := m + (pSize-m)%(p.Usable-4)
	if k <= x {
		return k
	}
	return m
}

// CellSize returns the on-disk size of a cell for the given rowid and,
// for leaf cells, payload byte count P.
func (p *Page) CellSize(rowid int64, pSize int) int {
	if p.Type().IsInterior() {
		return 4 + codec.VarintLen(uint64(rowid))
	}
	k := p.DirectlyStored(pSize)
	size := codec.VarintLen(uint64(pSize)) + codec.VarintLen(uint64(rowid)) + k
	if k < pSize {
		size += 4
	}
	return size
}

// OverflowWriter is the minimal interface a page needs to spill an
// oversized payload to a chain of freshly appended pages. The pager is
// the only component allowed to implement it, since only the pager may
// issue file I/O; overflow page payload capacity is Usable-4, per §4.3 —
// the reserved-space tail of the page (PageSize-Usable) stays unused on
// overflow pages just as it does on every other page.
type OverflowWriter interface {
	AppendPage(data []byte) (pageNumber uint32, err error)
	PageSize() int
	Usable() int
}

// writeOverflowChain appends ceil(len(tail)/(usable-4)) fresh pages to
// w, each carrying a leading uint32 next-page pointer (0 on the last
// page), and returns the page number of the first page in the chain.
func writeOverflowChain(w OverflowWriter, tail []byte) (uint32, error) {
	capacity := w.Usable() - 4
	nPages := (len(tail) + capacity - 1) / capacity

	pageNumbers := make([]uint32, nPages)
	buffers := make([][]byte, nPages)
	off := 0
	for i := 0; i < nPages; i++ {
		chunk := capacity
		if remaining := len(tail) - off; remaining < chunk {
			chunk = remaining
		}
		buf := make([]byte, w.PageSize())
		copy(buf[4:], tail[off:off+chunk])
		buffers[i] = buf
		off += chunk
	}
	for i := nPages - 1; i >= 0; i-- {
		next := uint32(0)
		if i+1 < nPages {
			next = pageNumbers[i+1]
		}
		bx.PutU32BE(buffers[i][:4], next)
		n, err := w.AppendPage(buffers[i])
		if err != nil {
			return 0, err
		}
		pageNumbers[i] = n
	}
	return pageNumbers[0], nil
}

// readOverflowChain reassembles the tail of a payload from its overflow
// chain, reading `want` bytes starting at firstPage. usable bounds each
// page's payload capacity to Usable-4, matching writeOverflowChain.
func readOverflowChain(readPage func(uint32) ([]byte, error), firstPage uint32, want, usable int) ([]byte, error) {
	out := make([]byte, 0, want)
	page := firstPage
	for len(out) < want && page != 0 {
		buf, err := readPage(page)
		if err != nil {
			return nil, err
		}
		next := bx.U32BE(buf[:4])
		remaining := want - len(out)
		chunk := usable - 4
		if chunk > remaining {
			chunk = remaining
		}
		out = append(out, buf[4:4+chunk]...)
		page = next
	}
	return out, nil
}

// InsertLeafCell writes a new leaf cell at cell-pointer slot `slot`,
// shifting later slots right by one. If the payload does not fit
// directly, the tail spills to a freshly allocated overflow chain via w.
// Returns ErrNotEnoughSpace if the page's free space cannot hold the
// cell even before considering any split.
func (p *Page) InsertLeafCell(rowid int64, slot int, payload []byte, w OverflowWriter) error {
	pSize := len(payload)
	size := p.CellSize(rowid, pSize)
	if size > p.FreeSpace() {
		return ErrNotEnoughSpace
	}

	h := p.ReadHeader()
	newOffset := h.StartOfCellContentArea - uint16(size)

	p.shiftCellPointers(slot, int(h.CellCount))
	p.WriteCellOffset(slot, newOffset)

	h.StartOfCellContentArea = newOffset
	h.CellCount++
	p.WriteHeader(h)

	k := p.DirectlyStored(pSize)
	off := int(newOffset)
	buf := p.Buf
	buf = appendVarintInPlace(buf, off, uint64(pSize))
	off += codec.VarintLen(uint64(pSize))
	buf = appendVarintInPlace(buf, off, uint64(rowid))
	off += codec.VarintLen(uint64(rowid))
	copy(buf[off:], payload[:k])
	off += k

	if k < pSize {
		first, err := writeOverflowChain(w, payload[k:])
		if err != nil {
			return err
		}
		bx.PutU32BE(buf[off:], first)
	}
	return nil
}

// InsertInteriorCell writes a new interior cell (left-child pointer plus
// rowid) at cell-pointer slot `slot`.
func (p *Page) InsertInteriorCell(rowid int64, slot int, leftChild uint32) error {
	size := p.CellSize(rowid, 0)
	if size > p.FreeSpace() {
		return ErrNotEnoughSpace
	}

	h := p.ReadHeader()
	newOffset := h.StartOfCellContentArea - uint16(size)

	p.shiftCellPointers(slot, int(h.CellCount))
	p.WriteCellOffset(slot, newOffset)

	h.StartOfCellContentArea = newOffset
	h.CellCount++
	p.WriteHeader(h)

	off := int(newOffset)
	bx.PutU32BE(p.Buf[off:], leftChild)
	off += 4
	appendVarintInPlace(p.Buf, off, uint64(rowid))
	return nil
}

// shiftCellPointers moves cell-pointer entries [slot, count) one slot to
// the right to make room for an insertion at slot.
func (p *Page) shiftCellPointers(slot, count int) {
	base := p.cellPointerBase()
	for i := count; i > slot; i-- {
		src := base + 2*(i-1)
		dst := base + 2*i
		bx.PutU16BE(p.Buf[dst:], bx.U16BE(p.Buf[src:]))
	}
}

func appendVarintInPlace(buf []byte, off int, v uint64) []byte {
	enc := codec.EncodeVarint(nil, v)
	copy(buf[off:], enc)
	return buf
}

// RawCellBytes returns the size raw bytes of a cell at off, suitable for
// relocating the cell verbatim into another page during a split without
// re-encoding its payload (and, if it spilled, without touching its
// overflow chain).
func (p *Page) RawCellBytes(off uint16, size int) []byte {
	return p.Buf[off : int(off)+size]
}

// AppendRawLeafCell places raw (already-encoded) cell bytes at the next
// free cell-pointer slot. Used when splitting a page to relocate an
// existing cell verbatim; it never shifts other cell pointers, so callers
// must append cells in ascending rowid order.
func (p *Page) AppendRawLeafCell(raw []byte) error {
	h := p.ReadHeader()
	size := len(raw)
	if size > p.FreeSpace() {
		return ErrNotEnoughSpace
	}
	newOffset := h.StartOfCellContentArea - uint16(size)
	p.WriteCellOffset(int(h.CellCount), newOffset)
	copy(p.Buf[newOffset:], raw)

	h.StartOfCellContentArea = newOffset
	h.CellCount++
	p.WriteHeader(h)
	return nil
}

// AssembleLeafPayload reads a leaf cell's full payload, reassembling the
// overflow chain if the cell spilled.
func (p *Page) AssembleLeafPayload(off uint16, readPage func(uint32) ([]byte, error)) (payload []byte, rowid int64, err error) {
	pv, n1 := codec.DecodeVarint(p.Buf[off:])
	rv, n2 := codec.DecodeVarint(p.Buf[off:][n1:])
	pSize := int(pv)
	rowid = int64(rv)
	k := p.DirectlyStored(pSize)

	bodyStart := int(off) + n1 + n2
	out := make([]byte, pSize)
	copy(out, p.Buf[bodyStart:bodyStart+k])

	if k < pSize {
		first := bx.U32BE(p.Buf[bodyStart+k:])
		tail, err := readOverflowChain(readPage, first, pSize-k, p.Usable)
		if err != nil {
			return nil, 0, err
		}
		copy(out[k:], tail)
	}
	return out, rowid, nil
}
