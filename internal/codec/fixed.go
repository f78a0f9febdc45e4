package codec

import "github.com/rowiddb/rowiddb/internal/alias/bx"

// ReadUint8, ReadInt8, ... read a big-endian fixed-width integer from the
// front of b. Signed readers sign-extend the top bit of the most
// significant byte, matching the serial-type content encodings in §4.2.
func ReadUint8(b []byte) uint8   { return b[0] }
func ReadInt8(b []byte) int8     { return bx.I8BE(b) }
func ReadUint16(b []byte) uint16 { return bx.U16BE(b) }
func ReadInt16(b []byte) int16   { return bx.I16BE(b) }
func ReadUint24(b []byte) uint32 { return bx.U24BE(b) }
func ReadInt24(b []byte) int32   { return bx.I24BE(b) }
func ReadUint32(b []byte) uint32 { return bx.U32BE(b) }
func ReadInt32(b []byte) int32   { return bx.I32BE(b) }
func ReadUint48(b []byte) uint64 { return bx.U48BE(b) }
func ReadInt48(b []byte) int64   { return bx.I48BE(b) }
func ReadUint64(b []byte) uint64 { return bx.U64BE(b) }
func ReadInt64(b []byte) int64   { return bx.I64BE(b) }

func WriteUint8(b []byte, v uint8)    { b[0] = v }
func WriteInt8(b []byte, v int8)      { b[0] = byte(v) }
func WriteUint16(b []byte, v uint16)  { bx.PutU16BE(b, v) }
func WriteInt16(b []byte, v int16)    { bx.PutU16BE(b, uint16(v)) }
func WriteUint24(b []byte, v uint32)  { bx.PutU24BE(b, v) }
func WriteInt24(b []byte, v int32)    { bx.PutU24BE(b, uint32(v)) }
func WriteUint32(b []byte, v uint32)  { bx.PutU32BE(b, v) }
func WriteInt32(b []byte, v int32)    { bx.PutU32BE(b, uint32(v)) }
func WriteUint48(b []byte, v uint64)  { bx.PutU48BE(b, v) }
func WriteInt48(b []byte, v int64)    { bx.PutU48BE(b, uint64(v)) }
func WriteUint64(b []byte, v uint64)  { bx.PutU64BE(b, v) }
func WriteInt64(b []byte, v int64)    { bx.PutU64BE(b, uint64(v)) }
