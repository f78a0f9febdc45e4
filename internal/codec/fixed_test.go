package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBigEndianRoundTrip(t *testing.T) {
	t.Run("int8", func(t *testing.T) {
		for _, v := range []int8{-128, -1, 0, 1, 127} {
			b := make([]byte, 1)
			WriteInt8(b, v)
			assert.Equal(t, v, ReadInt8(b))
		}
	})
	t.Run("int16", func(t *testing.T) {
		for _, v := range []int16{-32768, -1, 0, 1, 32767} {
			b := make([]byte, 2)
			WriteInt16(b, v)
			assert.Equal(t, v, ReadInt16(b))
		}
	})
	t.Run("int24", func(t *testing.T) {
		for _, v := range []int32{-8388608, -1, 0, 1, 8388607} {
			b := make([]byte, 3)
			WriteInt24(b, v)
			assert.Equal(t, v, ReadInt24(b))
		}
	})
	t.Run("int32", func(t *testing.T) {
		for _, v := range []int32{-2147483648, -1, 0, 1, 2147483647} {
			b := make([]byte, 4)
			WriteInt32(b, v)
			assert.Equal(t, v, ReadInt32(b))
		}
	})
	t.Run("int48", func(t *testing.T) {
		for _, v := range []int64{-140737488355328, -1, 0, 1, 140737488355327} {
			b := make([]byte, 6)
			WriteInt48(b, v)
			assert.Equal(t, v, ReadInt48(b))
		}
	})
	t.Run("int64", func(t *testing.T) {
		for _, v := range []int64{-9223372036854775808, -1, 0, 1, 9223372036854775807} {
			b := make([]byte, 8)
			WriteInt64(b, v)
			assert.Equal(t, v, ReadInt64(b))
		}
	})
}

func TestUnsignedRoundTrip(t *testing.T) {
	b32 := make([]byte, 4)
	WriteUint32(b32, 0xdeadbeef)
	assert.Equal(t, uint32(0xdeadbeef), ReadUint32(b32))

	b16 := make([]byte, 2)
	WriteUint16(b16, 0xbeef)
	assert.Equal(t, uint16(0xbeef), ReadUint16(b16))
}
