package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []Value{
		RowidValue(42),
		TextValue("alice"),
		IntValue(-7),
		NullValue(),
	}
	payload, p := Encode(values)
	assert.Equal(t, len(payload), p)

	headerLen := HeaderLen(payload)
	header := payload[:headerLen]
	body := payload[headerLen:]

	name, err := GetTextColumn(header, body, 2)
	assert.NoError(t, err)
	assert.Equal(t, "alice", name)

	n, err := GetIntegerColumn(header, body, 3, 42)
	assert.NoError(t, err)
	assert.Equal(t, int64(-7), n)

	id, err := GetIntegerColumn(header, body, 1, 42)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	nv, err := GetIntegerColumn(header, body, 4, 42)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), nv) // NULL column falls back to rowid per GetIntegerColumn contract
}

func TestHeaderAccountsForAllBodyBytes(t *testing.T) {
	values := []Value{IntValue(300), TextValue("hello world"), IntValue(0), IntValue(1)}
	payload, p := Encode(values)
	headerLen := HeaderLen(payload)

	sum := headerLen
	entries, err := walkHeader(payload[:headerLen])
	assert.NoError(t, err)
	for _, e := range entries {
		sum += e.length
	}
	assert.Equal(t, p, sum)
}

func TestColumnOutOfRange(t *testing.T) {
	payload, _ := Encode([]Value{IntValue(1)})
	headerLen := HeaderLen(payload)
	_, err := GetTextColumn(payload[:headerLen], payload[headerLen:], 5)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
}

func TestTypeMismatch(t *testing.T) {
	payload, _ := Encode([]Value{TextValue("x")})
	headerLen := HeaderLen(payload)
	_, err := GetIntegerColumn(payload[:headerLen], payload[headerLen:], 1, 0)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestVariableLengthSerialTypes(t *testing.T) {
	longText := make([]byte, 300)
	for i := range longText {
		longText[i] = byte('a' + i%26)
	}
	payload, _ := Encode([]Value{TextValue(string(longText)), BlobValue([]byte{1, 2, 3})})
	headerLen := HeaderLen(payload)
	header := payload[:headerLen]
	body := payload[headerLen:]

	text, err := GetTextColumn(header, body, 1)
	assert.NoError(t, err)
	assert.Equal(t, string(longText), text)

	blob, err := GetBlobColumn(header, body, 2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, blob)
}
