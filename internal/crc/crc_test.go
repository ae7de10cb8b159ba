package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumEmptyPayload(t *testing.T) {
	assert.EqualValues(t, 0x147A, Checksum(nil))
}

func TestChecksumSingleByte(t *testing.T) {
	crc := Seed
	crc.Single(0x7E)
	assert.EqualValues(t, Checksum([]byte{0x7E}), uint16(crc))
}

func TestChecksumIncrementalMatchesBulk(t *testing.T) {
	payload := []byte{0x80, 0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x00}

	bulk := Checksum(payload)

	crc := Seed
	for _, b := range payload {
		crc.Single(b)
	}
	assert.EqualValues(t, bulk, uint16(crc))
}
