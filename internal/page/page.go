// Package page implements a single fixed-size b-tree page buffer: its
// typed header, slotted cell-pointer directory, cell-size accounting,
// local rowid search and local cell insertion (including leaf split
// sizing and overflow-chain allocation). It knows nothing about the file
// as a whole; that is the pager's job.
package page

import (
	"errors"

	"github.com/rowiddb/rowiddb/internal/alias/bx"
	"github.com/rowiddb/rowiddb/internal/codec"
)

// Type tags the first byte of a page body.
type Type uint8

const (
	TypeInteriorIndex Type = 0x02
	TypeInteriorTable Type = 0x05
	TypeLeafIndex     Type = 0x0a
	TypeLeafTable     Type = 0x0d
)

func (t Type) IsInterior() bool { return t == TypeInteriorIndex || t == TypeInteriorTable }
func (t Type) IsLeaf() bool     { return t == TypeLeafIndex || t == TypeLeafTable }
func (t Type) IsTable() bool    { return t == TypeInteriorTable || t == TypeLeafTable }
func (t Type) Valid() bool {
	switch t {
	case TypeInteriorIndex, TypeInteriorTable, TypeLeafIndex, TypeLeafTable:
		return true
	default:
		return false
	}
}

var (
	ErrBadPageType    = errors.New("page: type byte outside the known b-tree page types")
	ErrNotEnoughSpace = errors.New("page: cell does not fit in the page's free space")
	ErrCellOutOfRange = errors.New("page: cell pointer offset outside the content area")
)

const (
	baseHeaderSizeLeaf     = 8
	baseHeaderSizeInterior = 12
	Page1HeaderOffset      = 100
)

// Header mirrors the 8/12-byte on-disk b-tree page header described in
// §3. RightMostChild is meaningful (and persisted) only for interior
// pages; it reads back as zero for leaves.
type Header struct {
	Type                   Type
	FirstFreeBlock         uint16
	CellCount              uint16
	StartOfCellContentArea uint16
	FragmentedFreeBytes    uint8
	RightMostChild         uint32
}

// Page is one page-sized buffer together with the bookkeeping needed to
// interpret it as a b-tree page. Buf always has length PageSize; on page 1
// the b-tree header begins at byte 100.
type Page struct {
	Buf        []byte
	PageSize   int // on-disk page size (power of two, 512..65536)
	Usable     int // U = PageSize - unused_reserved_space
	IsFirst    bool
	headerBase int // offset of the b-tree header within Buf
}

// New allocates a fresh, type-initialised page. All header fields are
// zero except StartOfCellContentArea, which starts at the top of the
// usable area.
func New(pageSize, usable int, isFirst bool, t Type) *Page {
	p := &Page{
		Buf:      make([]byte, pageSize),
		PageSize: pageSize,
		Usable:   usable,
		IsFirst:  isFirst,
	}
	p.headerBase = p.computeHeaderBase()
	h := Header{Type: t, StartOfCellContentArea: uint16(usable)}
	p.WriteHeader(h)
	return p
}

// InitFirst wraps an existing page 1 buffer — already carrying the
// 100-byte file header written by the pager — and initialises a fresh
// b-tree header of type t at offset 100, leaving the file header bytes
// that precede it untouched.
func InitFirst(buf []byte, pageSize, usable int, t Type) *Page {
	p := &Page{Buf: buf, PageSize: pageSize, Usable: usable, IsFirst: true}
	p.headerBase = p.computeHeaderBase()
	p.Reinit(t)
	return p
}

// Load wraps an existing page buffer (as read by the pager) for
// interpretation as a b-tree page.
func Load(buf []byte, pageSize, usable int, isFirst bool) (*Page, error) {
	p := &Page{Buf: buf, PageSize: pageSize, Usable: usable, IsFirst: isFirst}
	p.headerBase = p.computeHeaderBase()
	t := Type(buf[p.headerBase])
	if !t.Valid() {
		return nil, ErrBadPageType
	}
	return p, nil
}

// Reinit rewrites buf's header in place to a fresh page of type t,
// preserving the buffer's identity (used for root promotion, where the
// root page number must not change) and, on page 1, the 100-byte file
// header preceding the b-tree header.
func (p *Page) Reinit(t Type) {
	for i := p.headerBase; i < len(p.Buf); i++ {
		p.Buf[i] = 0
	}
	h := Header{Type: t, StartOfCellContentArea: uint16(p.Usable)}
	p.WriteHeader(h)
}

// HeaderSizeFor returns the fixed b-tree header size for page type t,
// ignoring the page 1 100-byte offset. Used when sizing freshly split
// pages, which are never page 1.
func HeaderSizeFor(t Type) int {
	if t.IsInterior() {
		return baseHeaderSizeInterior
	}
	return baseHeaderSizeLeaf
}

func (p *Page) computeHeaderBase() int {
	if p.IsFirst {
		return Page1HeaderOffset
	}
	return 0
}

// HeaderSize is 8 for leaves, 12 for interiors, plus 100 on page 1.
func (p *Page) HeaderSize() int {
	base := baseHeaderSizeLeaf
	if p.Type().IsInterior() {
		base = baseHeaderSizeInterior
	}
	if p.IsFirst {
		base += Page1HeaderOffset
	}
	return base
}

func (p *Page) Type() Type { return Type(p.Buf[p.headerBase]) }

// ReadHeader parses the page's typed header.
func (p *Page) ReadHeader() Header {
	b := p.headerBase
	h := Header{
		Type:                   Type(p.Buf[b]),
		FirstFreeBlock:         bx.U16BE(p.Buf[b+1:]),
		CellCount:              bx.U16BE(p.Buf[b+3:]),
		StartOfCellContentArea: bx.U16BE(p.Buf[b+5:]),
		FragmentedFreeBytes:    p.Buf[b+7],
	}
	if h.Type.IsInterior() {
		h.RightMostChild = bx.U32BE(p.Buf[b+8:])
	}
	return h
}

// WriteHeader serialises h back into the page buffer.
func (p *Page) WriteHeader(h Header) {
	b := p.headerBase
	p.Buf[b] = byte(h.Type)
	bx.PutU16BE(p.Buf[b+1:], h.FirstFreeBlock)
	bx.PutU16BE(p.Buf[b+3:], h.CellCount)
	bx.PutU16BE(p.Buf[b+5:], h.StartOfCellContentArea)
	p.Buf[b+7] = h.FragmentedFreeBytes
	if h.Type.IsInterior() {
		bx.PutU32BE(p.Buf[b+8:], h.RightMostChild)
	}
}

// baseHeaderSize is 8 for a leaf page's fixed header, 12 for an interior
// page's, not counting the page-1 100-byte offset.
func (p *Page) baseHeaderSize() int {
	if p.Type().IsInterior() {
		return baseHeaderSizeInterior
	}
	return baseHeaderSizeLeaf
}

// cellPointerBase returns the offset of the cell-pointer array's first
// entry, immediately after the fixed header.
func (p *Page) cellPointerBase() int { return p.headerBase + p.baseHeaderSize() }

// CellOffset returns the i-th cell-pointer array entry: the absolute
// offset (within Buf) of cell i's body.
func (p *Page) CellOffset(i int) uint16 {
	return bx.U16BE(p.Buf[p.cellPointerBase()+2*i:])
}

// WriteCellOffset sets the i-th cell-pointer array entry.
func (p *Page) WriteCellOffset(i int, off uint16) {
	bx.PutU16BE(p.Buf[p.cellPointerBase()+2*i:], off)
}

// FreeSpace is the gap between the end of the cell-pointer array and the
// start of the cell-content area.
func (p *Page) FreeSpace() int {
	h := p.ReadHeader()
	used := p.HeaderSize() + 2*int(h.CellCount)
	return int(h.StartOfCellContentArea) - used
}

// LowerBound returns the smallest index i with the rowid at cell i >= rowid,
// or CellCount if no such cell exists. Table b-tree cells are always
// ordered by ascending rowid, so this is a plain binary search.
func (p *Page) LowerBound(rowid int64) int {
	h := p.ReadHeader()
	lo, hi := 0, int(h.CellCount)
	for lo < hi {
		mid := (lo + hi) / 2
		if p.Rowid(p.CellOffset(mid)) < rowid {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Rowid reads the rowid stored at a cell's absolute offset. For a leaf
// cell that is the second varint (after payload size); for an interior
// cell it is the varint following the 4-byte left-child pointer.
func (p *Page) Rowid(off uint16) int64 {
	b := p.Buf[off:]
	if p.Type().IsInterior() {
		_, rowid := p.interiorCellAt(off)
		return rowid
	}
	_, n := codec.DecodeVarint(b) // payload size varint
	rowid, _ := codec.DecodeVarint(b[n:])
	return int64(rowid)
}

// LeftChild reads the left-child page pointer of an interior cell.
func (p *Page) LeftChild(off uint16) uint32 {
	return bx.U32BE(p.Buf[off:])
}

func (p *Page) interiorCellAt(off uint16) (leftChild uint32, rowid int64) {
	leftChild = bx.U32BE(p.Buf[off:])
	rv, _ := codec.DecodeVarint(p.Buf[off+4:])
	return leftChild, int64(rv)
}

// PayloadSize reads P, the total payload byte count, from a leaf cell.
func (p *Page) PayloadSize(off uint16) uint64 {
	pv, _ := codec.DecodeVarint(p.Buf[off:])
	return pv
}

// RightMostChild returns the interior page's right-most child pointer.
func (p *Page) RightMostChild() uint32 { return p.ReadHeader().RightMostChild }

// FirstOverflow reads the overflow-chain head page number trailing a leaf
// cell's directly-stored payload prefix. Callers must first confirm the
// cell actually spilled (DirectlyStored(P) < P); otherwise the bytes at
// this offset belong to the next cell or to free space.
func (p *Page) FirstOverflow(off uint16) uint32 {
	pv, n1 := codec.DecodeVarint(p.Buf[off:])
	_, n2 := codec.DecodeVarint(p.Buf[off:][n1:])
	k := p.DirectlyStored(int(pv))
	return bx.U32BE(p.Buf[int(off)+n1+n2+k:])
}
