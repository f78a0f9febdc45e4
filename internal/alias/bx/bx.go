// stand for bytes helper
package bx

import "encoding/binary"

var BE = binary.BigEndian

// --- BE (the on-disk format's byte order throughout: page headers, cell
// directory offsets, rowid/child pointers, file header fields) ---
func U16BE(b []byte) uint16       { return BE.Uint16(b) }
func U32BE(b []byte) uint32       { return BE.Uint32(b) }
func U64BE(b []byte) uint64       { return BE.Uint64(b) }
func PutU16BE(b []byte, v uint16) { BE.PutUint16(b, v) }
func PutU32BE(b []byte, v uint32) { BE.PutUint32(b, v) }
func PutU64BE(b []byte, v uint64) { BE.PutUint64(b, v) }

// --- BE, odd widths used by the on-disk record/page formats ---
// U24BE/U48BE sign-extend nothing themselves; callers needing the signed
// interpretation use I24BE/I48BE below.

func U24BE(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func PutU24BE(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func U48BE(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

func PutU48BE(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

// --- BE signed, sign-extended from the top bit of the most significant byte ---

func I8BE(b []byte) int8 { return int8(b[0]) }

func I16BE(b []byte) int16 { return int16(U16BE(b)) }

func I24BE(b []byte) int32 {
	v := int32(U24BE(b))
	if v&0x00800000 != 0 {
		v |= ^0x00ffffff
	}
	return v
}

func I32BE(b []byte) int32 { return int32(U32BE(b)) }

func I48BE(b []byte) int64 {
	v := int64(U48BE(b))
	if v&0x0000800000000000 != 0 {
		v |= ^0x0000ffffffffffff
	}
	return v
}

func I64BE(b []byte) int64 { return int64(U64BE(b)) }
