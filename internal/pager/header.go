package pager

import "github.com/rowiddb/rowiddb/internal/alias/bx"

// File header byte offsets, matching the on-disk format's 100-byte page-1
// preamble. Only the fields the core engine reads or mutates are named;
// everything else in the 100 bytes stays zero.
const (
	FileHeaderSize = 100

	offPageSize            = 16
	offUnusedReservedSpace = 20
	offFileChangeCounter   = 24
	offDatabaseSizeInPages = 28
	offVersionValidFor     = 92
)

// FileHeader mirrors the fields of the 100-byte file header this engine
// cares about. PageSizeRaw is the on-disk encoding, where 1 means 65536
// (see §9); callers almost always want ResolvedPageSize instead.
type FileHeader struct {
	PageSizeRaw         uint16
	UnusedReservedSpace uint8
	FileChangeCounter   uint32
	DatabaseSizeInPages uint32
	VersionValidFor     uint32
}

// ResolvedPageSize undoes the page_size==1 encoding quirk.
func (h FileHeader) ResolvedPageSize() int {
	if h.PageSizeRaw == 1 {
		return 65536
	}
	return int(h.PageSizeRaw)
}

// Usable returns U = page_size - unused_reserved_space.
func (h FileHeader) Usable() int {
	return h.ResolvedPageSize() - int(h.UnusedReservedSpace)
}

// SizeAuthoritative reports whether DatabaseSizeInPages can be trusted
// without recomputing it from the file length.
func (h FileHeader) SizeAuthoritative() bool {
	return h.DatabaseSizeInPages > 0 && h.FileChangeCounter == h.VersionValidFor
}

func encodePageSizeRaw(pageSize int) uint16 {
	if pageSize == 65536 {
		return 1
	}
	return uint16(pageSize)
}

func readFileHeader(buf []byte) FileHeader {
	return FileHeader{
		PageSizeRaw:         bx.U16BE(buf[offPageSize:]),
		UnusedReservedSpace: buf[offUnusedReservedSpace],
		FileChangeCounter:   bx.U32BE(buf[offFileChangeCounter:]),
		DatabaseSizeInPages: bx.U32BE(buf[offDatabaseSizeInPages:]),
		VersionValidFor:     bx.U32BE(buf[offVersionValidFor:]),
	}
}

func writeFileHeader(buf []byte, h FileHeader) {
	bx.PutU16BE(buf[offPageSize:], h.PageSizeRaw)
	buf[offUnusedReservedSpace] = h.UnusedReservedSpace
	bx.PutU32BE(buf[offFileChangeCounter:], h.FileChangeCounter)
	bx.PutU32BE(buf[offDatabaseSizeInPages:], h.DatabaseSizeInPages)
	bx.PutU32BE(buf[offVersionValidFor:], h.VersionValidFor)
}
