package fifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteReadRoundTrip(t *testing.T) {
	f := NewFifo(8)
	n := f.Write([]byte{1, 2, 3}, nil)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, f.GetOccupied())

	out := make([]byte, 3)
	n = f.Read(out, nil)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, out)
	assert.Equal(t, 0, f.GetOccupied())
}

func TestWrapsAroundBuffer(t *testing.T) {
	f := NewFifo(4)
	f.Write([]byte{1, 2}, nil)
	out := make([]byte, 2)
	f.Read(out, nil)
	f.Write([]byte{3, 4, 5}, nil)
	assert.Equal(t, []byte{3, 4, 5}, f.Bytes())
}

func TestResetClearsOccupied(t *testing.T) {
	f := NewFifo(4)
	f.Write([]byte{1, 2}, nil)
	f.Reset()
	assert.Equal(t, 0, f.GetOccupied())
}
