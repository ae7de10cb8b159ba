// Package fifo implements a fixed-size circular byte buffer that can fold
// written bytes into a running CRC16.
package fifo

import "github.com/gosatel/integra/internal/crc"

// Fifo is a circular byte buffer. One slot is kept free, so a Fifo of
// size n holds at most n-1 bytes. No other package of this module uses it.
type Fifo struct {
	buffer   []byte
	writePos int
	readPos  int
}

func NewFifo(size uint16) *Fifo {
	f := &Fifo{
		buffer:   make([]byte, size),
		writePos: 0,
		readPos:  0,
	}
	return f
}

func (f *Fifo) Reset() {
	f.readPos = 0
	f.writePos = 0
}

func (f *Fifo) GetSpace() int {
	sizeLeft := f.readPos - f.writePos - 1
	if sizeLeft < 0 {
		sizeLeft += len(f.buffer)
	}
	return sizeLeft
}

func (f *Fifo) GetOccupied() int {
	sizeOccupied := f.writePos - f.readPos
	if sizeOccupied < 0 {
		sizeOccupied += len(f.buffer)
	}
	return sizeOccupied
}

// Write data to fifo
func (f *Fifo) Write(buffer []byte, crc *crc.CRC16) int {

	if buffer == nil {
		return 0
	}
	writeCounter := 0

	for _, element := range buffer {
		writePosNext := f.writePos + 1
		if writePosNext == f.readPos || (writePosNext == len(f.buffer) && f.readPos == 0) {
			break
		}
		f.buffer[f.writePos] = element
		writeCounter += 1
		if crc != nil {
			crc.Single(element)
		}
		if writePosNext == len(f.buffer) {
			f.writePos = 0

		} else {
			f.writePos += 1
		}

	}
	return writeCounter

}

// Read data from fifo and return number of bytes read
func (f *Fifo) Read(buffer []byte, eof *bool) int {
	var readCounter int = 0
	if buffer == nil {
		return 0
	}
	if eof != nil {
		*eof = false
	}
	if f.readPos == f.writePos || buffer == nil {
		return 0
	}
	for index := range buffer {
		if f.readPos == f.writePos {
			break
		}
		buffer[index] = f.buffer[f.readPos]

		readCounter++
		f.readPos++

		if f.readPos == len(f.buffer) {
			f.readPos = 0
		}
	}
	return readCounter
}

// Bytes returns a copy of the occupied region in read order, without
// consuming it.
func (f *Fifo) Bytes() []byte {
	out := make([]byte, f.GetOccupied())
	pos := f.readPos
	for i := range out {
		out[i] = f.buffer[pos]
		pos++
		if pos == len(f.buffer) {
			pos = 0
		}
	}
	return out
}
