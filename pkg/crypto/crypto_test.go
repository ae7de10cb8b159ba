package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pair(t *testing.T) (*Handler, *Handler) {
	t.Helper()
	alloc := &IDAllocator{}
	a, err := NewHandler("testkey1234", alloc)
	assert.NoError(t, err)
	b, err := NewHandler("testkey1234", alloc)
	assert.NoError(t, err)
	return a, b
}

func TestNewHandlerEmptyKeyDisablesEncryption(t *testing.T) {
	h, err := NewHandler("", nil)
	assert.NoError(t, err)
	assert.Nil(t, h)
}

func TestEncodeDecodeRoundTripVariousLengths(t *testing.T) {
	for _, n := range []int{1, 2, 15, 16, 17, 31, 32, 63, 100, 255} {
		a, b := pair(t)
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i)
		}

		wire := a.Encode(payload)
		size := wire[0]
		assert.EqualValues(t, n, size)

		got, err := b.Decode(wire[1:])
		assert.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestRollingCounterStartsAtZero(t *testing.T) {
	a, _ := pair(t)
	assert.EqualValues(t, 0, a.rollingCounter)
	a.Encode([]byte{1, 2, 3})
	assert.EqualValues(t, 1, a.rollingCounter)
}

func TestIDHandshakeAdoptsPeerIDs(t *testing.T) {
	a, b := pair(t)

	wire := a.Encode([]byte{0xAA})
	_, err := b.Decode(wire[1:])
	assert.NoError(t, err)
	// b adopts a's id_s as its own id_r; sending id_s itself does not
	// change across a send.
	assert.Equal(t, a.idS, b.idR)

	reply := b.Encode([]byte{0xBB})
	_, err = a.Decode(reply[1:])
	assert.NoError(t, err)
}

func TestDecodeRejectsMismatchedID(t *testing.T) {
	alloc := &IDAllocator{}
	// Burn one id so `a`'s id_s is non-zero; a fresh, never-corresponded-with
	// stranger still carries the default id_r of 0, so its header won't echo
	// back the id_s `a` expects.
	_, err := NewHandler("keyone", alloc)
	assert.NoError(t, err)
	a, err := NewHandler("keyone", alloc)
	assert.NoError(t, err)
	stranger, err := NewHandler("keyone", alloc)
	assert.NoError(t, err)

	wire := stranger.Encode([]byte{1})
	_, err = a.Decode(wire[1:])
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDeriveKeyPadsAndDoubles(t *testing.T) {
	key := deriveKey("abc")
	assert.Len(t, key, 24)
	assert.Equal(t, key[:12], key[12:])
	assert.Equal(t, byte('a'), key[0])
	assert.Equal(t, byte(0x20), key[3])
}
