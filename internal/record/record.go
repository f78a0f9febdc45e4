// Package record implements the payload codec: the header-then-body
// record format used for every cell body in a table b-tree, built on the
// serial-type scheme described in §3. It has no notion of pages or files;
// it only turns a typed tuple into bytes and back.
package record

import (
	"errors"
	"math"

	"github.com/rowiddb/rowiddb/internal/codec"
)

// Serial-type codes. A column's serial type describes both its storage
// class and the size of its body; NULL, the two boolean literals, and the
// rowid alias all have a zero-length body.
const (
	SerialNull   = 0
	SerialInt8   = 1
	SerialInt16  = 2
	SerialInt24  = 3
	SerialInt32  = 4
	SerialInt48  = 5
	SerialInt64  = 6
	SerialFloat8 = 7
	SerialZero   = 8
	SerialOne    = 9
)

var (
	ErrColumnOutOfRange   = errors.New("record: column ordinal out of range")
	ErrTypeMismatch       = errors.New("record: column serial type incompatible with getter")
	ErrUnsupportedContent = errors.New("record: unsupported integer content size")
	ErrMalformedRecord    = errors.New("record: header claims more bytes than are present")
)

// ContentSize returns the number of body bytes a serial type occupies.
func ContentSize(serialType uint64) int {
	switch {
	case serialType == SerialNull, serialType == SerialZero, serialType == SerialOne:
		return 0
	case serialType == SerialInt8:
		return 1
	case serialType == SerialInt16:
		return 2
	case serialType == SerialInt24:
		return 3
	case serialType == SerialInt32:
		return 4
	case serialType == SerialInt48:
		return 6
	case serialType == SerialInt64, serialType == SerialFloat8:
		return 8
	case serialType >= 12 && serialType%2 == 0:
		return int((serialType - 12) / 2)
	case serialType >= 13:
		return int((serialType - 13) / 2)
	default:
		return 0 // 10, 11: reserved, never produced by this engine
	}
}

// IsBlobSerialType and IsTextSerialType classify a serial type >= 12.
func IsBlobSerialType(serialType uint64) bool { return serialType >= 12 && serialType%2 == 0 }
func IsTextSerialType(serialType uint64) bool { return serialType >= 13 && serialType%2 == 1 }

// Value is one column value in a decoded or to-be-encoded row. Exactly one
// of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	I    int64
	Text string
	Blob []byte
}

type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindText
	KindBlob
	// KindRowid marks the designated rowid column: it is encoded as
	// SerialNull (empty body) and materialized from the cell's rowid field
	// rather than from the record body.
	KindRowid
)

func NullValue() Value         { return Value{Kind: KindNull} }
func IntValue(v int64) Value   { return Value{Kind: KindInt, I: v} }
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }
func BlobValue(b []byte) Value { return Value{Kind: KindBlob, Blob: b} }
func RowidValue(v int64) Value { return Value{Kind: KindRowid, I: v} }

// serialTypeFor returns the serial type that will be emitted for v and the
// number of body bytes it needs.
func serialTypeFor(v Value) (serialType uint64, bodyLen int) {
	switch v.Kind {
	case KindNull, KindRowid:
		return SerialNull, 0
	case KindText:
		n := len(v.Text)
		return uint64(n*2 + 13), n
	case KindBlob:
		n := len(v.Blob)
		return uint64(n*2 + 12), n
	case KindInt:
		switch {
		case v.I == 0:
			return SerialZero, 0
		case v.I == 1:
			return SerialOne, 0
		case v.I >= -128 && v.I <= 127:
			return SerialInt8, 1
		case v.I >= -32768 && v.I <= 32767:
			return SerialInt16, 2
		case v.I >= -8388608 && v.I <= 8388607:
			return SerialInt24, 3
		case v.I >= -2147483648 && v.I <= 2147483647:
			return SerialInt32, 4
		case v.I >= -140737488355328 && v.I <= 140737488355327:
			return SerialInt48, 6
		default:
			return SerialInt64, 8
		}
	default:
		return SerialNull, 0
	}
}

// Encode serialises an ordered tuple of column values into a payload and
// returns the payload bytes together with P, the total payload byte count.
// Columns using KindRowid are always encoded with an empty body regardless
// of the value carried in I; the rowid itself lives in the cell prefix, not
// the payload.
func Encode(values []Value) (payload []byte, p int) {
	serialTypes := make([]uint64, len(values))
	bodyLens := make([]int, len(values))
	bodyTotal := 0
	for i, v := range values {
		st, bl := serialTypeFor(v)
		serialTypes[i] = st
		bodyLens[i] = bl
		bodyTotal += bl
	}

	// The header-length varint counts itself, so its width is found via
	// len_plus against the running total of serial-type varint widths.
	serialTypesLen := 0
	for _, st := range serialTypes {
		serialTypesLen += codec.VarintLen(st)
	}
	headerLen := codec.VarintLenPlus(uint64(serialTypesLen))
	for {
		want := codec.VarintLen(uint64(headerLen + serialTypesLen))
		if want == headerLen {
			break
		}
		headerLen = want
	}

	out := make([]byte, 0, headerLen+serialTypesLen+bodyTotal)
	out = codec.EncodeVarint(out, uint64(headerLen+serialTypesLen))
	for _, st := range serialTypes {
		out = codec.EncodeVarint(out, st)
	}
	for i, v := range values {
		out = appendBody(out, v, serialTypes[i], bodyLens[i])
	}
	return out, len(out)
}

func appendBody(dst []byte, v Value, serialType uint64, bodyLen int) []byte {
	switch {
	case serialType == SerialNull, serialType == SerialZero, serialType == SerialOne:
		return dst
	case IsTextSerialType(serialType):
		return append(dst, v.Text...)
	case IsBlobSerialType(serialType):
		return append(dst, v.Blob...)
	default:
		var buf [8]byte
		switch bodyLen {
		case 1:
			codec.WriteInt8(buf[:1], int8(v.I))
		case 2:
			codec.WriteInt16(buf[:2], int16(v.I))
		case 3:
			codec.WriteInt24(buf[:3], int32(v.I))
		case 4:
			codec.WriteInt32(buf[:4], int32(v.I))
		case 6:
			codec.WriteInt48(buf[:6], v.I)
		case 8:
			codec.WriteInt64(buf[:8], v.I)
		}
		return append(dst, buf[:bodyLen]...)
	}
}

// columnEntry describes where one column's body lives within the record
// body, used internally while walking the header.
type columnEntry struct {
	serialType uint64
	offset     int // offset into the body (post-header) bytes
	length     int
}

// walkHeader parses the varint header and returns, for each column, its
// serial type and its body offset/length within body (the bytes following
// the header).
func walkHeader(header []byte) ([]columnEntry, error) {
	headerLen, n := codec.DecodeVarint(header)
	if uint64(n) > headerLen {
		return nil, ErrMalformedRecord
	}
	pos := n
	var entries []columnEntry
	bodyOffset := 0
	for pos < int(headerLen) {
		st, m := codec.DecodeVarint(header[pos:])
		pos += m
		cl := ContentSize(st)
		entries = append(entries, columnEntry{serialType: st, offset: bodyOffset, length: cl})
		bodyOffset += cl
	}
	return entries, nil
}

// GetColumnCount returns the number of columns a record body declares.
func GetColumnCount(header []byte) (int, error) {
	entries, err := walkHeader(header)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// GetTextColumn returns column i (1-based, 0 is the implicit rowid and is
// never a text column) decoded as text. header is the varint
// header-then-serial-types prefix of the payload; body is the bytes that
// follow it (with overflow bytes, if any, already reassembled).
func GetTextColumn(header, body []byte, i int) (string, error) {
	entries, err := walkHeader(header)
	if err != nil {
		return "", err
	}
	if i < 1 || i > len(entries) {
		return "", ErrColumnOutOfRange
	}
	e := entries[i-1]
	if !IsTextSerialType(e.serialType) {
		return "", ErrTypeMismatch
	}
	if e.offset+e.length > len(body) {
		return "", ErrMalformedRecord
	}
	return string(body[e.offset : e.offset+e.length]), nil
}

// GetBlobColumn mirrors GetTextColumn for BLOB columns.
func GetBlobColumn(header, body []byte, i int) ([]byte, error) {
	entries, err := walkHeader(header)
	if err != nil {
		return nil, err
	}
	if i < 1 || i > len(entries) {
		return nil, ErrColumnOutOfRange
	}
	e := entries[i-1]
	if !IsBlobSerialType(e.serialType) {
		return nil, ErrTypeMismatch
	}
	if e.offset+e.length > len(body) {
		return nil, ErrMalformedRecord
	}
	out := make([]byte, e.length)
	copy(out, body[e.offset:e.offset+e.length])
	return out, nil
}

// GetIntegerColumn returns column i decoded as an integer. i == 0 always
// refers to the implicit rowid; a declared column named "id" uses serial
// type 0 (empty body) and is also materialized from rowid.
func GetIntegerColumn(header, body []byte, i int, rowid int64) (int64, error) {
	if i == 0 {
		return rowid, nil
	}
	entries, err := walkHeader(header)
	if err != nil {
		return 0, err
	}
	if i < 1 || i > len(entries) {
		return 0, ErrColumnOutOfRange
	}
	e := entries[i-1]
	switch e.serialType {
	case SerialNull:
		// Either a genuine NULL or the designated rowid alias column.
		return rowid, nil
	case SerialZero:
		return 0, nil
	case SerialOne:
		return 1, nil
	}
	if IsTextSerialType(e.serialType) || IsBlobSerialType(e.serialType) {
		return 0, ErrTypeMismatch
	}
	if e.offset+e.length > len(body) {
		return 0, ErrMalformedRecord
	}
	b := body[e.offset : e.offset+e.length]
	switch e.length {
	case 0:
		return rowid, nil
	case 1:
		return int64(codec.ReadInt8(b)), nil
	case 2:
		return int64(codec.ReadInt16(b)), nil
	case 3:
		return int64(codec.ReadInt24(b)), nil
	case 4:
		return int64(codec.ReadInt32(b)), nil
	case 6:
		return codec.ReadInt48(b), nil
	case 8:
		if e.serialType == SerialFloat8 {
			return int64(math.Float64frombits(codec.ReadUint64(b))), nil
		}
		return codec.ReadInt64(b), nil
	default:
		return 0, ErrUnsupportedContent
	}
}

// HeaderLen reports how many leading bytes of payload belong to the
// varint-header-then-serial-types prefix, so callers can split payload
// into (header, body).
func HeaderLen(payload []byte) int {
	headerLen, _ := codec.DecodeVarint(payload)
	return int(headerLen)
}
