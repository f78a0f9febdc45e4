// Package codec implements the big-endian fixed-width integer readers and
// writers and the 1-9 byte variable-length integer encoding used by every
// on-disk structure in the engine: page headers, cell payload/rowid
// prefixes, and record serial types.
package codec

// MaxVarintLen is the largest number of bytes a varint can occupy.
const MaxVarintLen = 9

// DecodeVarint reads a varint from the front of b and returns the decoded
// value together with the number of bytes consumed (1-9). Bytes 1-8 use the
// high bit as a continuation flag; once 8 continuation bytes have been seen,
// the 9th byte contributes all 8 of its bits with no continuation flag of
// its own, so decoding always terminates within 9 bytes.
func DecodeVarint(b []byte) (v uint64, n int) {
	for n = 0; n < 8; n++ {
		c := b[n]
		v = (v << 7) | uint64(c&0x7f)
		if c&0x80 == 0 {
			return v, n + 1
		}
	}
	v = (v << 8) | uint64(b[8])
	return v, 9
}

// EncodeVarint appends the minimal-length varint encoding of v to dst and
// returns the resulting slice.
func EncodeVarint(dst []byte, v uint64) []byte {
	if v&(uint64(0xff)<<56) != 0 {
		// Top byte in use: the 9-byte form packs 7 bits per byte (with the
		// continuation bit set) into the first 8 bytes and dumps the low
		// byte verbatim into the 9th.
		var buf [9]byte
		buf[8] = byte(v)
		vv := v >> 8
		for i := 7; i >= 0; i-- {
			buf[i] = byte(vv&0x7f) | 0x80
			vv >>= 7
		}
		return append(dst, buf[:]...)
	}

	var buf [9]byte
	n := 0
	for {
		buf[n] = byte(v & 0x7f)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}
	// buf[0..n) holds little-endian 7-bit groups; emit big-endian with the
	// continuation bit set on every byte but the last.
	for i, j := 0, n-1; j >= 0; i, j = i+1, j-1 {
		b := buf[j]
		if i != n-1 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// VarintLen reports the number of bytes EncodeVarint would use for v.
func VarintLen(v uint64) int {
	switch {
	case v <= 0x7f:
		return 1
	case v <= 0x3fff:
		return 2
	case v <= 0x1fffff:
		return 3
	case v <= 0xfffffff:
		return 4
	case v <= 0x7ffffffff:
		return 5
	case v <= 0x3ffffffffff:
		return 6
	case v <= 0x1ffffffffffff:
		return 7
	case v <= 0xffffffffffffff:
		return 8
	default:
		return 9
	}
}

// VarintLenPlus returns the length of the smallest n >= 1 such that v+n
// still fits in an n-byte varint. It is used to size a self-describing
// header-length varint, whose own encoded length counts toward the value it
// encodes.
func VarintLenPlus(v uint64) int {
	switch {
	case v+1 <= 0x7f:
		return 1
	case v+2 <= 0x3fff:
		return 2
	case v+3 <= 0x1fffff:
		return 3
	case v+4 <= 0xfffffff:
		return 4
	case v+5 <= 0x7ffffffff:
		return 5
	case v+6 <= 0x3ffffffffff:
		return 6
	case v+7 <= 0x1ffffffffffff:
		return 7
	case v+8 <= 0xffffffffffffff:
		return 8
	default:
		return 9
	}
}
