package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedAll(t *testing.T, d *Decoder, data []byte) ([]byte, bool) {
	t.Helper()
	for _, b := range data {
		body, ev := d.Feed(b)
		if ev == EventComplete {
			return body, true
		}
	}
	return nil, false
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	wire := Encode(0x80, []byte{0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x00})

	d := NewDecoder()
	body, ok := feedAll(t, d, wire)
	assert.True(t, ok)

	opcode, payload, ok := ParseBody(body)
	assert.True(t, ok)
	assert.EqualValues(t, 0x80, opcode)
	assert.Equal(t, []byte{0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x00}, payload)
}

func TestEncodeStuffsSyncByteInBody(t *testing.T) {
	wire := Encode(0x01, []byte{0xFE, 0x02})

	// FE in the body must be doubled with the escape byte.
	count := 0
	for i, b := range wire {
		if b == Sync && i > 1 && i != len(wire)-2 {
			count++
		}
	}
	assert.Equal(t, 1, count)

	d := NewDecoder()
	body, ok := feedAll(t, d, wire)
	assert.True(t, ok)
	_, payload, ok := ParseBody(body)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xFE, 0x02}, payload)
}

func TestEncodeDecodeRoundTripArbitraryBytes(t *testing.T) {
	for _, payload := range [][]byte{
		nil,
		{0x00},
		{0xFE, 0xFE, 0xFE},
		{0x0D, 0xF0, 0xFE},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	} {
		wire := Encode(0x7E, payload)
		d := NewDecoder()
		body, ok := feedAll(t, d, wire)
		assert.True(t, ok)
		_, decoded, ok := ParseBody(body)
		assert.True(t, ok)
		assert.Equal(t, payload, decoded)
	}
}

func TestEmptyBodyFrameAccepted(t *testing.T) {
	wire := Encode(0x7E, nil)
	d := NewDecoder()
	body, ok := feedAll(t, d, wire)
	assert.True(t, ok)
	opcode, payload, ok := ParseBody(body)
	assert.True(t, ok)
	assert.EqualValues(t, 0x7E, opcode)
	assert.Nil(t, payload)
}

func TestCorruptCrcRejected(t *testing.T) {
	wire := Encode(0x10, []byte{1, 2, 3})
	wire[len(wire)-3] ^= 0xFF // flip a CRC byte (just before FE 0D trailer)

	d := NewDecoder()
	body, ok := feedAll(t, d, wire)
	assert.True(t, ok)
	_, _, ok = ParseBody(body)
	assert.False(t, ok)
}

func TestDoubleSyncMidMessageResyncs(t *testing.T) {
	d := NewDecoder()
	// Start a frame, then interrupt it with a fresh FE FE before it ends.
	first := Encode(0x01, []byte{0xAA, 0xBB})
	second := Encode(0x02, []byte{0xCC})

	// Feed the first frame's start plus a couple of body bytes, then
	// immediately start the second frame: the decoder must resync and
	// only the second frame should complete.
	var gotResync bool
	for _, b := range first[:4] {
		_, ev := d.Feed(b)
		if ev == EventResync {
			gotResync = true
		}
	}
	body, ok := feedAll(t, d, second)
	assert.True(t, ok)
	opcode, payload, ok := ParseBody(body)
	assert.True(t, ok)
	assert.EqualValues(t, 0x02, opcode)
	assert.Equal(t, []byte{0xCC}, payload)
	_ = gotResync
}
